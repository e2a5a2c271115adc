package service

import (
	"context"
	"testing"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

func newCloFixture(t *testing.T) (*CloService, *repository.MockCloRepository) {
	t.Helper()
	courseRepo := repository.NewMockCourseRepository()
	cloRepo := repository.NewMockCloRepository()
	if err := courseRepo.Create(context.Background(), &academic.Course{ID: 1, ProgramID: 1, CourseCode: "CS101", CourseName: "Programming Fundamentals", CreditHours: 3}); err != nil {
		t.Fatalf("Seeding course failed: %v", err)
	}
	return NewCloService(courseRepo, cloRepo), cloRepo
}

func TestCloCreate_DuplicateNumberRejected(t *testing.T) {
	svc, _ := newCloFixture(t)
	req := &outcome.CreateCloRequest{CourseID: 1, CloNumber: 1, Description: "Apply programming constructs"}

	if _, err := svc.Create(context.Background(), adminPrincipal(), req); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), adminPrincipal(), req)
	if err == nil {
		t.Fatal("Expected duplicate CLO number to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
	expected := "CLO 1 already exists for course CS101"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestCloUpdate_RenumberOntoExistingRejected(t *testing.T) {
	svc, cloRepo := newCloFixture(t)
	cloRepo.Add(&outcome.Clo{CourseID: 1, CloNumber: 1, Description: "First"})
	second := cloRepo.Add(&outcome.Clo{CourseID: 1, CloNumber: 2, Description: "Second"})

	_, err := svc.Update(context.Background(), adminPrincipal(), second.ID, &outcome.UpdateCloRequest{CloNumber: 1})
	if err == nil {
		t.Fatal("Expected renumbering onto an existing CLO to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
}

func TestCloCreate_UnknownCourseRejected(t *testing.T) {
	svc, _ := newCloFixture(t)

	_, err := svc.Create(context.Background(), adminPrincipal(), &outcome.CreateCloRequest{CourseID: 9, CloNumber: 1, Description: "Orphan"})
	if err == nil {
		t.Fatal("Expected a CLO under an unknown course to be rejected")
	}
	if !apperror.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func newPloFixture(t *testing.T) (*PloService, *repository.MockPloRepository) {
	t.Helper()
	programRepo := repository.NewMockProgramRepository()
	ploRepo := repository.NewMockPloRepository()
	if err := programRepo.Create(context.Background(), &academic.Program{ID: 1, Code: "BSCS", Name: "BS Computer Science"}); err != nil {
		t.Fatalf("Seeding program failed: %v", err)
	}
	return NewPloService(programRepo, ploRepo), ploRepo
}

func TestPloCreate_DuplicateCodeRejected(t *testing.T) {
	svc, _ := newPloFixture(t)
	req := &outcome.CreatePloRequest{ProgramID: 1, Code: "PLO-1", Title: "Engineering Knowledge"}

	if _, err := svc.Create(context.Background(), adminPrincipal(), req); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), adminPrincipal(), req)
	if err == nil {
		t.Fatal("Expected duplicate PLO code to be rejected")
	}
	if !apperror.IsConflict(err) {
		t.Errorf("Expected conflict error, got %v", err)
	}
	expected := "PLO PLO-1 already exists for program BSCS"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestPloListByProgram_OrderedByCode(t *testing.T) {
	svc, ploRepo := newPloFixture(t)
	ploRepo.Add(&outcome.Plo{ProgramID: 1, Code: "PLO-2", Title: "Problem Analysis"})
	ploRepo.Add(&outcome.Plo{ProgramID: 1, Code: "PLO-1", Title: "Engineering Knowledge"})

	plos, err := svc.ListByProgram(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByProgram failed: %v", err)
	}
	if len(plos) != 2 {
		t.Fatalf("Expected 2 PLOs, got %d", len(plos))
	}
	if plos[0].Code != "PLO-1" || plos[1].Code != "PLO-2" {
		t.Errorf("Expected PLOs ordered by code, got %s then %s", plos[0].Code, plos[1].Code)
	}
}
