package service

import (
	"context"
	"testing"
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

type batchFixture struct {
	svc         *BatchService
	batchRepo   *repository.MockBatchRepository
	semRepo     *repository.MockSemesterRepository
	studentRepo *repository.MockStudentRepository
}

func newBatchFixture() *batchFixture {
	semRepo := repository.NewMockSemesterRepository()
	batchRepo := repository.NewMockBatchRepository(semRepo)
	programRepo := repository.NewMockProgramRepository()
	studentRepo := repository.NewMockStudentRepository()
	return &batchFixture{
		svc:         NewBatchService(batchRepo, semRepo, programRepo, studentRepo),
		batchRepo:   batchRepo,
		semRepo:     semRepo,
		studentRepo: studentRepo,
	}
}

func createBatchRequest(name string) *academic.CreateBatchRequest {
	return &academic.CreateBatchRequest{
		Name:               name,
		Year:               2021,
		SemesterStartDay:   1,
		SemesterStartMonth: 8,
		SemesterEndDay:     31,
		SemesterEndMonth:   12,
	}
}

func TestBatchCreate_GeneratesEightSemesters(t *testing.T) {
	f := newBatchFixture()

	batch, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if batch.CurrentSemester != 1 || batch.Status != academic.BatchStatusActive {
		t.Errorf("Unexpected batch state: %+v", batch)
	}
	if len(batch.Semesters) != 8 {
		t.Fatalf("Expected 8 semesters, got %d", len(batch.Semesters))
	}

	for i, sem := range batch.Semesters {
		if sem.Number != i+1 {
			t.Errorf("Expected semester number %d, got %d", i+1, sem.Number)
		}
		if sem.IsActive != (i == 0) {
			t.Errorf("Expected only semester 1 active, semester %d active=%v", sem.Number, sem.IsActive)
		}
		if sem.IsLocked {
			t.Errorf("Expected semester %d unlocked at creation", sem.Number)
		}
	}

	// starts advance by 6 months: Aug 2021, Feb 2022, Aug 2022, ...
	first := batch.Semesters[0]
	if first.StartDate != time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected semester 1 start: %v", first.StartDate)
	}
	second := batch.Semesters[1]
	if second.StartDate != time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected semester 2 start: %v", second.StartDate)
	}
	last := batch.Semesters[7]
	if last.StartDate != time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected semester 8 start: %v", last.StartDate)
	}
}

func TestBatchCreate_EndYearRollsOverPastDecember(t *testing.T) {
	f := newBatchFixture()
	req := createBatchRequest("FA21")
	req.SemesterEndDay = 15
	req.SemesterEndMonth = 1

	batch, err := f.svc.Create(context.Background(), adminPrincipal(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// end month January precedes the August start, so semester 1 ends next year
	first := batch.Semesters[0]
	if first.EndDate != time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Expected semester 1 to end in the next year, got %v", first.EndDate)
	}
}

func TestBatchCreate_DuplicateNameRejected(t *testing.T) {
	f := newBatchFixture()

	if _, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21")); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err == nil {
		t.Fatal("Expected duplicate batch name to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
	expected := "Batch FA21 already exists"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestMoveToNextSemester_AdvancesAndLocks(t *testing.T) {
	f := newBatchFixture()
	created, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	batch, err := f.svc.MoveToNextSemester(context.Background(), adminPrincipal(), created.ID)
	if err != nil {
		t.Fatalf("MoveToNextSemester failed: %v", err)
	}
	if batch.CurrentSemester != 2 {
		t.Errorf("Expected current semester 2, got %d", batch.CurrentSemester)
	}

	first := batch.Semesters[0]
	if first.IsActive || !first.IsLocked {
		t.Errorf("Expected semester 1 inactive and locked, got active=%v locked=%v", first.IsActive, first.IsLocked)
	}
	second := batch.Semesters[1]
	if !second.IsActive || second.IsLocked {
		t.Errorf("Expected semester 2 active and unlocked, got active=%v locked=%v", second.IsActive, second.IsLocked)
	}
}

func TestMoveToNextSemester_FinalSemesterRejected(t *testing.T) {
	f := newBatchFixture()
	created, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 7; i++ {
		if _, err := f.svc.MoveToNextSemester(context.Background(), adminPrincipal(), created.ID); err != nil {
			t.Fatalf("Advance %d failed: %v", i+1, err)
		}
	}

	_, err = f.svc.MoveToNextSemester(context.Background(), adminPrincipal(), created.ID)
	if err == nil {
		t.Fatal("Expected advancing past semester 8 to fail")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
	expected := "Batch FA21 is already in its final semester"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestGraduate_RequiresFinalSemester(t *testing.T) {
	f := newBatchFixture()
	created, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := f.svc.Graduate(context.Background(), adminPrincipal(), created.ID); err == nil {
		t.Fatal("Expected graduation before the final semester to fail")
	}

	for i := 0; i < 7; i++ {
		if _, err := f.svc.MoveToNextSemester(context.Background(), adminPrincipal(), created.ID); err != nil {
			t.Fatalf("Advance %d failed: %v", i+1, err)
		}
	}

	batch, err := f.svc.Graduate(context.Background(), adminPrincipal(), created.ID)
	if err != nil {
		t.Fatalf("Graduate failed: %v", err)
	}
	if batch.Status != academic.BatchStatusGraduated {
		t.Errorf("Expected status Graduated, got %s", batch.Status)
	}
	final := batch.Semesters[7]
	if !final.IsLocked || final.IsActive {
		t.Errorf("Expected final semester locked and inactive, got locked=%v active=%v", final.IsLocked, final.IsActive)
	}

	if _, err := f.svc.MoveToNextSemester(context.Background(), adminPrincipal(), created.ID); err == nil {
		t.Error("Expected a graduated batch to refuse advancement")
	}
}

func TestBatchDelete_RefusedWithStudents(t *testing.T) {
	f := newBatchFixture()
	created, err := f.svc.Create(context.Background(), adminPrincipal(), createBatchRequest("FA21"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.studentRepo.Add(&academic.PreRegisteredStudent{RollNo: "FA21-001", StudentName: "Amal", BatchID: created.ID})

	err = f.svc.Delete(context.Background(), adminPrincipal(), created.ID)
	if err == nil {
		t.Fatal("Expected delete of a batch with students to fail")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
}
