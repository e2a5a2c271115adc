package service

import (
	"context"
	"testing"

	"obetrack/internal/domain/academic"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

type offeringFixture struct {
	svc          *OfferingService
	offeringRepo *repository.MockOfferingRepository
	semRepo      *repository.MockSemesterRepository
	facultyRepo  *repository.MockFacultyRepository
	semester     *academic.Semester
	instructor   *academic.FacultyProfile
}

func newOfferingFixture(t *testing.T) *offeringFixture {
	t.Helper()
	offeringRepo := repository.NewMockOfferingRepository()
	courseRepo := repository.NewMockCourseRepository()
	semRepo := repository.NewMockSemesterRepository()
	facultyRepo := repository.NewMockFacultyRepository()

	if err := courseRepo.Create(context.Background(), &academic.Course{ID: 1, ProgramID: 1, CourseCode: "CS101", CourseName: "Programming Fundamentals", CreditHours: 3}); err != nil {
		t.Fatalf("Seeding course failed: %v", err)
	}
	semester := semRepo.Add(&academic.Semester{BatchID: 1, Number: 1, IsActive: true})
	instructor := facultyRepo.Add(&academic.FacultyProfile{
		UserID:      42,
		Designation: "Lecturer",
		User:        &academic.User{ID: 42, Name: "Dr. Khan", Email: "khan@example.edu", Role: academic.RoleFaculty},
	})

	return &offeringFixture{
		svc:          NewOfferingService(offeringRepo, courseRepo, semRepo, facultyRepo),
		offeringRepo: offeringRepo,
		semRepo:      semRepo,
		facultyRepo:  facultyRepo,
		semester:     semester,
		instructor:   instructor,
	}
}

func TestOfferingCreate_Succeeds(t *testing.T) {
	f := newOfferingFixture(t)

	resp, err := f.svc.Create(context.Background(), adminPrincipal(), &academic.CreateOfferingRequest{
		CourseID:     1,
		SemesterID:   f.semester.ID,
		InstructorID: f.instructor.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.CourseID != 1 || resp.SemesterID != f.semester.ID || resp.InstructorID != f.instructor.ID {
		t.Errorf("Unexpected offering response: %+v", resp)
	}
}

func TestOfferingCreate_DuplicateCourseSemesterRejected(t *testing.T) {
	f := newOfferingFixture(t)
	req := &academic.CreateOfferingRequest{CourseID: 1, SemesterID: f.semester.ID, InstructorID: f.instructor.ID}

	if _, err := f.svc.Create(context.Background(), adminPrincipal(), req); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := f.svc.Create(context.Background(), adminPrincipal(), req)
	if err == nil {
		t.Fatal("Expected duplicate offering to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
	expected := "Course CS101 is already offered in semester 1"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestOfferingCreate_LockedSemesterRejected(t *testing.T) {
	f := newOfferingFixture(t)
	f.semester.IsLocked = true

	_, err := f.svc.Create(context.Background(), adminPrincipal(), &academic.CreateOfferingRequest{
		CourseID:     1,
		SemesterID:   f.semester.ID,
		InstructorID: f.instructor.ID,
	})
	if err == nil {
		t.Fatal("Expected create under a locked semester to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}
	expected := "Semester 1 is locked; offerings cannot be created under it"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestOfferingCreate_NonFacultyInstructorRejected(t *testing.T) {
	f := newOfferingFixture(t)
	student := f.facultyRepo.Add(&academic.FacultyProfile{
		UserID: 50,
		User:   &academic.User{ID: 50, Name: "Not Faculty", Email: "na@example.edu", Role: academic.RoleStudent},
	})

	_, err := f.svc.Create(context.Background(), adminPrincipal(), &academic.CreateOfferingRequest{
		CourseID:     1,
		SemesterID:   f.semester.ID,
		InstructorID: student.ID,
	})
	if err == nil {
		t.Fatal("Expected a non-faculty instructor to be rejected")
	}
	expected := "User 50 does not hold the Faculty role"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestOfferingUpdate_LockedSemesterRejected(t *testing.T) {
	f := newOfferingFixture(t)
	offering := f.offeringRepo.Add(&academic.CourseOffering{
		CourseID:     1,
		SemesterID:   f.semester.ID,
		InstructorID: f.instructor.ID,
		Semester:     f.semester,
	})
	f.semester.IsLocked = true

	_, err := f.svc.Update(context.Background(), adminPrincipal(), offering.ID, &academic.UpdateOfferingRequest{InstructorID: f.instructor.ID})
	if err == nil {
		t.Fatal("Expected update under a locked semester to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}
}

func TestOfferingDelete_LockedSemesterRejected(t *testing.T) {
	f := newOfferingFixture(t)
	offering := f.offeringRepo.Add(&academic.CourseOffering{
		CourseID:     1,
		SemesterID:   f.semester.ID,
		InstructorID: f.instructor.ID,
		Semester:     f.semester,
	})
	f.semester.IsLocked = true

	err := f.svc.Delete(context.Background(), adminPrincipal(), offering.ID)
	if err == nil {
		t.Fatal("Expected delete under a locked semester to fail")
	}
	if !apperror.IsInvalid(err) {
		t.Errorf("Expected invalid error, got %v", err)
	}
}
