package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.StudentService = (*StudentService)(nil)

// StudentService manages the pre-registered student roster that anchors the
// attainment pipeline.
type StudentService struct {
	batchRepo   interfaces.BatchRepository
	studentRepo interfaces.StudentRepository
}

// NewStudentService creates a new student roster service
func NewStudentService(batchRepo interfaces.BatchRepository, studentRepo interfaces.StudentRepository) *StudentService {
	return &StudentService{
		batchRepo:   batchRepo,
		studentRepo: studentRepo,
	}
}

// PreRegister seeds roll numbers into a batch. Roll numbers are trimmed, must
// be unique within the payload and must not collide with any existing roll
// number in any batch. Returns the number of students created.
func (s *StudentService) PreRegister(ctx context.Context, principal *academic.Principal, req *academic.PreRegisterStudentsRequest) (int, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return 0, validationError(err)
	}

	batch, err := s.batchRepo.GetByID(ctx, req.BatchID)
	if err != nil {
		return 0, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return 0, apperror.NotFound("Batch %d not found", req.BatchID)
	}

	seen := make(map[string]bool, len(req.Students))
	students := make([]*academic.PreRegisteredStudent, 0, len(req.Students))
	for _, entry := range req.Students {
		rollNo := strings.TrimSpace(entry.RollNo)
		if rollNo == "" {
			return 0, apperror.Invalid("Roll number must not be blank")
		}
		key := strings.ToLower(rollNo)
		if seen[key] {
			return 0, apperror.Invalid("Duplicate roll number %s in payload", rollNo)
		}
		seen[key] = true

		existing, err := s.studentRepo.GetByRollNo(ctx, rollNo)
		if err != nil {
			return 0, fmt.Errorf("failed to check roll number %s: %w", rollNo, err)
		}
		if existing != nil {
			return 0, apperror.Conflict("Roll number %s is already registered in batch %d", rollNo, existing.BatchID)
		}

		students = append(students, &academic.PreRegisteredStudent{
			RollNo:      rollNo,
			StudentName: strings.TrimSpace(entry.StudentName),
			BatchID:     req.BatchID,
			CreatedBy:   principal.ID,
		})
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"batch_id": req.BatchID,
		"count":    len(students),
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "pre_register_students",
		Entity:   "pre_registered_student",
		Metadata: metadata,
	}
	if err := s.studentRepo.CreateMany(ctx, students, log); err != nil {
		return 0, fmt.Errorf("failed to pre-register students: %w", err)
	}

	logger.Info("Pre-registered %d students into batch %s", len(students), batch.Name)
	return len(students), nil
}

func (s *StudentService) ListByBatch(ctx context.Context, batchID uint) ([]*academic.PreRegisteredStudent, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", batchID)
	}
	return s.studentRepo.GetByBatch(ctx, batchID)
}
