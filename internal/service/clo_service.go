package service

import (
	"context"
	"fmt"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.CloService = (*CloService)(nil)

// CloService manages course learning outcomes.
type CloService struct {
	courseRepo interfaces.CourseRepository
	cloRepo    interfaces.CloRepository
}

// NewCloService creates a new CLO service
func NewCloService(courseRepo interfaces.CourseRepository, cloRepo interfaces.CloRepository) *CloService {
	return &CloService{
		courseRepo: courseRepo,
		cloRepo:    cloRepo,
	}
}

func (s *CloService) Create(ctx context.Context, principal *academic.Principal, req *outcome.CreateCloRequest) (*outcome.Clo, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, apperror.NotFound("Course %d not found", req.CourseID)
	}

	existing, err := s.cloRepo.GetByCourseAndNumber(ctx, req.CourseID, req.CloNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check CLO number: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("CLO %d already exists for course %s", req.CloNumber, course.CourseCode)
	}

	clo := &outcome.Clo{
		CourseID:    req.CourseID,
		CloNumber:   req.CloNumber,
		Description: req.Description,
	}
	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "create_clo",
		Entity: "clo",
	}
	if err := s.cloRepo.Create(ctx, clo, log); err != nil {
		return nil, fmt.Errorf("failed to create CLO: %w", err)
	}
	return clo, nil
}

func (s *CloService) Get(ctx context.Context, id uint) (*outcome.Clo, error) {
	clo, err := s.cloRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load CLO: %w", err)
	}
	if clo == nil {
		return nil, apperror.NotFound("CLO %d not found", id)
	}
	return clo, nil
}

func (s *CloService) ListByCourse(ctx context.Context, courseID uint) ([]*outcome.Clo, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, apperror.NotFound("Course %d not found", courseID)
	}
	return s.cloRepo.GetByCourse(ctx, courseID)
}

func (s *CloService) Update(ctx context.Context, principal *academic.Principal, id uint, req *outcome.UpdateCloRequest) (*outcome.Clo, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	clo, err := s.cloRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load CLO: %w", err)
	}
	if clo == nil {
		return nil, apperror.NotFound("CLO %d not found", id)
	}

	if req.CloNumber != 0 && req.CloNumber != clo.CloNumber {
		existing, err := s.cloRepo.GetByCourseAndNumber(ctx, clo.CourseID, req.CloNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to check CLO number: %w", err)
		}
		if existing != nil {
			return nil, apperror.Conflict("CLO %d already exists for this course", req.CloNumber)
		}
		clo.CloNumber = req.CloNumber
	}
	if req.Description != "" {
		clo.Description = req.Description
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "update_clo",
		Entity: "clo",
	}
	if err := s.cloRepo.Update(ctx, clo, log); err != nil {
		return nil, fmt.Errorf("failed to update CLO: %w", err)
	}
	return clo, nil
}

// Delete removes the CLO along with its mapping rows.
func (s *CloService) Delete(ctx context.Context, principal *academic.Principal, id uint) error {
	clo, err := s.cloRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load CLO: %w", err)
	}
	if clo == nil {
		return apperror.NotFound("CLO %d not found", id)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "delete_clo",
		Entity: "clo",
	}
	return s.cloRepo.Delete(ctx, id, log)
}
