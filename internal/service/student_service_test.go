package service

import (
	"context"
	"testing"

	"obetrack/internal/domain/academic"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

func newStudentFixture() (*StudentService, *repository.MockStudentRepository, *academic.Batch) {
	semRepo := repository.NewMockSemesterRepository()
	batchRepo := repository.NewMockBatchRepository(semRepo)
	studentRepo := repository.NewMockStudentRepository()
	batch := batchRepo.Add(&academic.Batch{Name: "FA21", Year: 2021, Status: academic.BatchStatusActive})
	return NewStudentService(batchRepo, studentRepo), studentRepo, batch
}

func TestPreRegister_Succeeds(t *testing.T) {
	svc, studentRepo, batch := newStudentFixture()

	count, err := svc.PreRegister(context.Background(), adminPrincipal(), &academic.PreRegisterStudentsRequest{
		BatchID: batch.ID,
		Students: []academic.PreRegisterStudentEntry{
			{RollNo: "FA21-001", StudentName: "Amal"},
			{RollNo: "FA21-002", StudentName: "Bilal"},
		},
	})
	if err != nil {
		t.Fatalf("PreRegister failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 students registered, got %d", count)
	}

	students, _ := studentRepo.GetByBatch(context.Background(), batch.ID)
	if len(students) != 2 {
		t.Errorf("Expected 2 roster rows, got %d", len(students))
	}
}

func TestPreRegister_DuplicateInPayloadRejected(t *testing.T) {
	svc, studentRepo, batch := newStudentFixture()

	_, err := svc.PreRegister(context.Background(), adminPrincipal(), &academic.PreRegisterStudentsRequest{
		BatchID: batch.ID,
		Students: []academic.PreRegisterStudentEntry{
			{RollNo: "FA21-001", StudentName: "Amal"},
			{RollNo: "fa21-001", StudentName: "Amal Again"},
		},
	})
	if err == nil {
		t.Fatal("Expected duplicate roll numbers in one payload to be rejected")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}

	students, _ := studentRepo.GetByBatch(context.Background(), batch.ID)
	if len(students) != 0 {
		t.Errorf("Expected no roster rows after rejection, got %d", len(students))
	}
}

func TestPreRegister_ExistingRollNoRejected(t *testing.T) {
	svc, studentRepo, batch := newStudentFixture()
	studentRepo.Add(&academic.PreRegisteredStudent{RollNo: "FA21-001", StudentName: "Amal", BatchID: batch.ID})

	_, err := svc.PreRegister(context.Background(), adminPrincipal(), &academic.PreRegisterStudentsRequest{
		BatchID: batch.ID,
		Students: []academic.PreRegisterStudentEntry{
			{RollNo: "FA21-001", StudentName: "Amal"},
		},
	})
	if err == nil {
		t.Fatal("Expected an already registered roll number to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
}
