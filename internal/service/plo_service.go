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

var _ serviceInterfaces.PloService = (*PloService)(nil)

// PloService manages program learning outcomes.
type PloService struct {
	programRepo interfaces.ProgramRepository
	ploRepo     interfaces.PloRepository
}

// NewPloService creates a new PLO service
func NewPloService(programRepo interfaces.ProgramRepository, ploRepo interfaces.PloRepository) *PloService {
	return &PloService{
		programRepo: programRepo,
		ploRepo:     ploRepo,
	}
}

func (s *PloService) Create(ctx context.Context, principal *academic.Principal, req *outcome.CreatePloRequest) (*outcome.Plo, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	program, err := s.programRepo.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if program == nil {
		return nil, apperror.NotFound("Program %d not found", req.ProgramID)
	}

	existing, err := s.ploRepo.GetByProgramAndCode(ctx, req.ProgramID, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check PLO code: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("PLO %s already exists for program %s", req.Code, program.Code)
	}

	plo := &outcome.Plo{
		ProgramID:   req.ProgramID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
	}
	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "create_plo",
		Entity: "plo",
	}
	if err := s.ploRepo.Create(ctx, plo, log); err != nil {
		return nil, fmt.Errorf("failed to create PLO: %w", err)
	}
	return plo, nil
}

func (s *PloService) Get(ctx context.Context, id uint) (*outcome.Plo, error) {
	plo, err := s.ploRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load PLO: %w", err)
	}
	if plo == nil {
		return nil, apperror.NotFound("PLO %d not found", id)
	}
	return plo, nil
}

func (s *PloService) ListByProgram(ctx context.Context, programID uint) ([]*outcome.Plo, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if program == nil {
		return nil, apperror.NotFound("Program %d not found", programID)
	}
	return s.ploRepo.GetByProgram(ctx, programID)
}
