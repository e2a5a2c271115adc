package service

import (
	"context"
	"strings"
	"testing"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

type resultFixture struct {
	svc         *ResultService
	offeringRepo *repository.MockOfferingRepository
	studentRepo *repository.MockStudentRepository
	facultyRepo *repository.MockFacultyRepository
	userRepo    *repository.MockUserRepository
	resultRepo  *repository.MockResultRepository
	cacheRepo   *repository.MockPloCacheRepository
	offering    *academic.CourseOffering
}

func newResultFixture() *resultFixture {
	offeringRepo := repository.NewMockOfferingRepository()
	studentRepo := repository.NewMockStudentRepository()
	facultyRepo := repository.NewMockFacultyRepository()
	userRepo := repository.NewMockUserRepository()
	resultRepo := repository.NewMockResultRepository()
	cacheRepo := repository.NewMockPloCacheRepository()
	attainment := NewAttainmentService(resultRepo, cacheRepo, nil)

	resultRepo.Courses[1] = &academic.Course{ID: 1, CourseCode: "CS101", CourseName: "Programming Fundamentals"}
	offering := offeringRepo.Add(&academic.CourseOffering{
		CourseID:     1,
		SemesterID:   10,
		InstructorID: 5,
		Semester:     &academic.Semester{ID: 10, BatchID: 1, Number: 1},
	})

	facultyRepo.Add(&academic.FacultyProfile{UserID: 42, Designation: "Lecturer"})
	studentRepo.Add(&academic.PreRegisteredStudent{RollNo: "FA21-001", StudentName: "Amal", BatchID: 1})

	svc := NewResultService(offeringRepo, studentRepo, facultyRepo, userRepo, resultRepo, attainment, 100)
	return &resultFixture{
		svc:          svc,
		offeringRepo: offeringRepo,
		studentRepo:  studentRepo,
		facultyRepo:  facultyRepo,
		userRepo:     userRepo,
		resultRepo:   resultRepo,
		cacheRepo:    cacheRepo,
		offering:     offering,
	}
}

func ptr(v float64) *float64 { return &v }

func uploadRequest(rows ...outcome.StudentPloRow) *outcome.UploadCoursePloResultsRequest {
	return &outcome.UploadCoursePloResultsRequest{CourseOfferingID: 1, Students: rows}
}

func facultyPrincipal() *academic.Principal {
	return &academic.Principal{ID: 42, Role: academic.RoleFaculty}
}

func TestUpload_StoresFractionsAndRecomputesCache(t *testing.T) {
	f := newResultFixture()

	result, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(75), Plo2: ptr(40)},
	))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected success")
	}
	if result.Stats.Inserted != 1 || result.Stats.Updated != 0 {
		t.Errorf("Expected 1 inserted 0 updated, got %d/%d", result.Stats.Inserted, result.Stats.Updated)
	}

	rows, _ := f.resultRepo.GetByRollNoAndBatch(context.Background(), "FA21-001", 1)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 result row, got %d", len(rows))
	}
	if v := rows[0].PloValue(1); v == nil || *v != 0.75 {
		t.Errorf("Expected PLO 1 stored as 0.75, got %v", v)
	}
	if v := rows[0].PloValue(2); v == nil || *v != 0.4 {
		t.Errorf("Expected PLO 2 stored as 0.4, got %v", v)
	}

	cached, _ := f.cacheRepo.GetByRollNo(context.Background(), "FA21-001")
	if len(cached) != 2 {
		t.Fatalf("Expected 2 cache rows after upload, got %d", len(cached))
	}
	if cached[0].AverageAttainment != 0.75 || cached[0].AchievementLevel != "Medium" {
		t.Errorf("Unexpected PLO 1 cache row: %+v", cached[0])
	}
	if cached[1].IsAchieved {
		t.Error("Expected PLO 2 at 0.4 to be unachieved")
	}
}

func TestUpload_ReuploadUpdatesInsteadOfDuplicating(t *testing.T) {
	f := newResultFixture()
	principal := facultyPrincipal()

	if _, err := f.svc.Upload(context.Background(), principal, uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(60)},
	)); err != nil {
		t.Fatalf("First upload failed: %v", err)
	}

	result, err := f.svc.Upload(context.Background(), principal, uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(80)},
	))
	if err != nil {
		t.Fatalf("Second upload failed: %v", err)
	}
	if result.Stats.Inserted != 0 || result.Stats.Updated != 1 {
		t.Errorf("Expected 0 inserted 1 updated, got %d/%d", result.Stats.Inserted, result.Stats.Updated)
	}
	if f.resultRepo.Len() != 1 {
		t.Errorf("Expected 1 result row after re-upload, got %d", f.resultRepo.Len())
	}

	rows, _ := f.resultRepo.GetByRollNoAndBatch(context.Background(), "FA21-001", 1)
	if v := rows[0].PloValue(1); v == nil || *v != 0.8 {
		t.Errorf("Expected re-uploaded value 0.8, got %v", v)
	}
}

func TestUpload_UnknownRollNoSkippedWithWarning(t *testing.T) {
	f := newResultFixture()

	result, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(70)},
		outcome.StudentPloRow{RollNo: "FA21-999", StudentName: "Ghost", Plo1: ptr(50)},
	))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.Stats.SuccessfullyProcessed != 1 {
		t.Errorf("Expected 1 processed row, got %d", result.Stats.SuccessfullyProcessed)
	}
	if len(result.Stats.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(result.Stats.Warnings))
	}
	expected := "Roll number FA21-999 is not pre-registered, row skipped"
	if result.Stats.Warnings[0] != expected {
		t.Errorf("Expected warning '%s', got '%s'", expected, result.Stats.Warnings[0])
	}
}

func TestUpload_WrongBatchAbortsWithNothingWritten(t *testing.T) {
	f := newResultFixture()
	f.studentRepo.Add(&academic.PreRegisteredStudent{RollNo: "SP22-001", StudentName: "Bilal", BatchID: 2})
	f.studentRepo.Add(&academic.PreRegisteredStudent{RollNo: "SP22-002", StudentName: "Sara", BatchID: 2})

	_, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(70)},
		outcome.StudentPloRow{RollNo: "SP22-001", StudentName: "Bilal", Plo1: ptr(60)},
		outcome.StudentPloRow{RollNo: "FA21-999", StudentName: "Ghost", Plo1: ptr(50)},
		outcome.StudentPloRow{RollNo: "SP22-002", StudentName: "Sara", Plo1: ptr(55)},
	))
	if err == nil {
		t.Fatal("Expected wrong-batch upload to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}

	appErr, ok := apperror.AsError(err)
	if !ok {
		t.Fatalf("Expected an application error, got %v", err)
	}
	if appErr.Message != "Validation errors found" {
		t.Errorf("Expected message 'Validation errors found', got '%s'", appErr.Message)
	}
	if len(appErr.Errors) != 2 {
		t.Fatalf("Expected 2 batch errors, got %d: %v", len(appErr.Errors), appErr.Errors)
	}
	if appErr.Errors[0] != "Roll number SP22-001 belongs to batch 2, not batch 1 of this offering" {
		t.Errorf("Unexpected first batch error '%s'", appErr.Errors[0])
	}
	if !strings.Contains(appErr.Errors[1], "SP22-002") {
		t.Errorf("Expected second batch error to name SP22-002, got '%s'", appErr.Errors[1])
	}
	if len(appErr.Warnings) != 1 || !strings.Contains(appErr.Warnings[0], "FA21-999") {
		t.Errorf("Expected the unknown roll warning to be carried, got %v", appErr.Warnings)
	}

	if f.resultRepo.Len() != 0 {
		t.Errorf("Expected no result rows after abort, got %d", f.resultRepo.Len())
	}
	if cached, _ := f.cacheRepo.GetByRollNo(context.Background(), "FA21-001"); len(cached) != 0 {
		t.Errorf("Expected no cache rows after abort, got %d", len(cached))
	}
}

func TestUpload_AllRowsSkippedRejected(t *testing.T) {
	f := newResultFixture()

	_, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-888", StudentName: "Nobody", Plo1: ptr(70)},
		outcome.StudentPloRow{RollNo: "FA21-999", StudentName: "Ghost", Plo1: ptr(50)},
	))
	if err == nil {
		t.Fatal("Expected upload with no valid rows to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}

	appErr, ok := apperror.AsError(err)
	if !ok {
		t.Fatalf("Expected an application error, got %v", err)
	}
	if appErr.Message != "No valid student data to upload" {
		t.Errorf("Expected message 'No valid student data to upload', got '%s'", appErr.Message)
	}
	if len(appErr.Warnings) != 2 {
		t.Errorf("Expected 2 skip warnings, got %v", appErr.Warnings)
	}
	if f.resultRepo.Len() != 0 {
		t.Errorf("Expected no result rows, got %d", f.resultRepo.Len())
	}
}

func TestUpload_DuplicateRollNoKeepsLastRow(t *testing.T) {
	f := newResultFixture()

	result, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(50)},
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(90)},
	))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.Stats.SuccessfullyProcessed != 1 {
		t.Errorf("Expected 1 processed row, got %d", result.Stats.SuccessfullyProcessed)
	}

	rows, _ := f.resultRepo.GetByRollNoAndBatch(context.Background(), "FA21-001", 1)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 result row, got %d", len(rows))
	}
	if v := rows[0].PloValue(1); v == nil || *v != 0.9 {
		t.Errorf("Expected last duplicate row to win with 0.9, got %v", v)
	}
}

func TestUpload_LockedSemesterRejected(t *testing.T) {
	f := newResultFixture()
	f.offering.Semester.IsLocked = true

	_, err := f.svc.Upload(context.Background(), facultyPrincipal(), uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(70)},
	))
	if err == nil {
		t.Fatal("Expected upload into locked semester to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}
	expected := "Semester 1 is locked; results cannot be uploaded"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestUpload_AdminProfileProvisionedLazily(t *testing.T) {
	f := newResultFixture()
	f.userRepo.Add(&academic.User{ID: 99, Name: "Admin", Email: "admin@example.edu", Role: academic.RoleAdmin})
	principal := &academic.Principal{ID: 99, Role: academic.RoleAdmin}

	if _, err := f.svc.Upload(context.Background(), principal, uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(70)},
	)); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	profile, _ := f.facultyRepo.GetByUserID(context.Background(), 99)
	if profile == nil {
		t.Fatal("Expected admin profile to be provisioned")
	}
	if profile.Designation != "Administrator" {
		t.Errorf("Expected designation 'Administrator', got '%s'", profile.Designation)
	}
}

func TestUpload_FacultyWithoutProfileRejected(t *testing.T) {
	f := newResultFixture()
	principal := &academic.Principal{ID: 7, Role: academic.RoleFaculty}

	_, err := f.svc.Upload(context.Background(), principal, uploadRequest(
		outcome.StudentPloRow{RollNo: "FA21-001", StudentName: "Amal", Plo1: ptr(70)},
	))
	if err == nil {
		t.Fatal("Expected upload without a faculty profile to fail")
	}
	expected := "No faculty profile found for user 7"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}
