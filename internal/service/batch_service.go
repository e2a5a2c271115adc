package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.BatchService = (*BatchService)(nil)

// BatchService manages batch lifecycle. Creating a batch generates its 8
// semesters up front; advancement locks semesters one by one until
// graduation.
type BatchService struct {
	batchRepo    interfaces.BatchRepository
	semesterRepo interfaces.SemesterRepository
	programRepo  interfaces.ProgramRepository
	studentRepo  interfaces.StudentRepository
}

// NewBatchService creates a new batch lifecycle service
func NewBatchService(
	batchRepo interfaces.BatchRepository,
	semesterRepo interfaces.SemesterRepository,
	programRepo interfaces.ProgramRepository,
	studentRepo interfaces.StudentRepository,
) *BatchService {
	return &BatchService{
		batchRepo:    batchRepo,
		semesterRepo: semesterRepo,
		programRepo:  programRepo,
		studentRepo:  studentRepo,
	}
}

func (s *BatchService) Create(ctx context.Context, principal *academic.Principal, req *academic.CreateBatchRequest) (*academic.Batch, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.batchRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check batch name: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Batch %s already exists", req.Name)
	}

	if req.ProgramID != nil {
		program, err := s.programRepo.GetByID(ctx, *req.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("failed to load program: %w", err)
		}
		if program == nil {
			return nil, apperror.NotFound("Program %d not found", *req.ProgramID)
		}
	}

	batch := &academic.Batch{
		Name:               req.Name,
		Year:               req.Year,
		ProgramID:          req.ProgramID,
		CurrentSemester:    1,
		SemesterStartDay:   req.SemesterStartDay,
		SemesterStartMonth: req.SemesterStartMonth,
		SemesterEndDay:     req.SemesterEndDay,
		SemesterEndMonth:   req.SemesterEndMonth,
		Status:             academic.BatchStatusActive,
		CreatedBy:          principal.ID,
	}
	semesters := generateSemesters(req)

	metadata, _ := json.Marshal(map[string]interface{}{
		"name":      req.Name,
		"year":      req.Year,
		"semesters": len(semesters),
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "create_batch",
		Entity:   "batch",
		Metadata: metadata,
	}
	if err := s.batchRepo.CreateWithSemesters(ctx, batch, semesters, log); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	logger.Info("Created batch %s with %d semesters", batch.Name, len(semesters))
	return s.Get(ctx, batch.ID)
}

// generateSemesters lays out the 8 semesters of a new batch. Each semester
// starts 6 months after the previous one; the end date reuses the configured
// end day and month, rolling into the next year when the end month precedes
// the semester's start month. Only semester 1 starts active.
func generateSemesters(req *academic.CreateBatchRequest) []*academic.Semester {
	semesters := make([]*academic.Semester, 0, academic.SemestersPerBatch)
	year := req.Year
	month := req.SemesterStartMonth

	for number := 1; number <= academic.SemestersPerBatch; number++ {
		endYear := year
		if req.SemesterEndMonth < month {
			endYear = year + 1
		}
		semesters = append(semesters, &academic.Semester{
			Number:    number,
			StartDate: time.Date(year, time.Month(month), req.SemesterStartDay, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(endYear, time.Month(req.SemesterEndMonth), req.SemesterEndDay, 0, 0, 0, 0, time.UTC),
			IsActive:  number == 1,
		})

		month += 6
		if month > 12 {
			month -= 12
			year++
		}
	}
	return semesters
}

func (s *BatchService) Get(ctx context.Context, id uint) (*academic.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", id)
	}

	semesters, err := s.semesterRepo.GetByBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load semesters: %w", err)
	}
	batch.Semesters = make([]academic.Semester, 0, len(semesters))
	for _, sem := range semesters {
		batch.Semesters = append(batch.Semesters, *sem)
	}
	return batch, nil
}

func (s *BatchService) List(ctx context.Context, page, limit int) ([]*academic.Batch, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.batchRepo.List(ctx, page, limit)
}

func (s *BatchService) Update(ctx context.Context, principal *academic.Principal, id uint, req *academic.UpdateBatchRequest) (*academic.Batch, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", id)
	}

	if req.Name != "" && req.Name != batch.Name {
		existing, err := s.batchRepo.GetByName(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check batch name: %w", err)
		}
		if existing != nil {
			return nil, apperror.Conflict("Batch %s already exists", req.Name)
		}
		batch.Name = req.Name
	}
	if req.Status != "" {
		batch.Status = req.Status
	}
	batch.Program = nil
	batch.Semesters = nil

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "update_batch",
		Entity: "batch",
	}
	if err := s.batchRepo.Update(ctx, batch, log); err != nil {
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a batch and its semesters. Batches that still carry
// pre-registered students are refused.
func (s *BatchService) Delete(ctx context.Context, principal *academic.Principal, id uint) error {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return apperror.NotFound("Batch %d not found", id)
	}

	students, err := s.studentRepo.CountByBatch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count students: %w", err)
	}
	if students > 0 {
		return apperror.Conflict("Batch %s still has %d pre-registered students", batch.Name, students)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "delete_batch",
		Entity: "batch",
	}
	return s.batchRepo.DeleteWithSemesters(ctx, id, log)
}

// MoveToNextSemester locks the current semester, activates the next one and
// advances the batch pointer.
func (s *BatchService) MoveToNextSemester(ctx context.Context, principal *academic.Principal, id uint) (*academic.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", id)
	}
	if batch.Status != academic.BatchStatusActive {
		return nil, apperror.Conflict("Batch %s is %s; only active batches can advance", batch.Name, batch.Status)
	}
	if batch.CurrentSemester >= academic.SemestersPerBatch {
		return nil, apperror.Conflict("Batch %s is already in its final semester", batch.Name)
	}

	semesters, err := s.semesterRepo.GetByBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load semesters: %w", err)
	}
	var currentID, nextID uint
	for _, sem := range semesters {
		if sem.Number == batch.CurrentSemester {
			currentID = sem.ID
		}
		if sem.Number == batch.CurrentSemester+1 {
			nextID = sem.ID
		}
	}
	if currentID == 0 || nextID == 0 {
		return nil, fmt.Errorf("batch %d is missing semester rows", id)
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"from_semester": batch.CurrentSemester,
		"to_semester":   batch.CurrentSemester + 1,
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "advance_semester",
		Entity:   "batch",
		Metadata: metadata,
	}
	err = s.batchRepo.AdvanceSemester(ctx, id, currentID, nextID, batch.CurrentSemester+1, log)
	if err != nil {
		return nil, fmt.Errorf("failed to advance semester: %w", err)
	}

	logger.Info("Batch %s advanced to semester %d", batch.Name, batch.CurrentSemester+1)
	return s.Get(ctx, id)
}

// Graduate locks the final semester and marks the batch Graduated. Only a
// batch already in its final semester can graduate.
func (s *BatchService) Graduate(ctx context.Context, principal *academic.Principal, id uint) (*academic.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", id)
	}
	if batch.Status != academic.BatchStatusActive {
		return nil, apperror.Conflict("Batch %s is %s and cannot graduate", batch.Name, batch.Status)
	}
	if batch.CurrentSemester != academic.SemestersPerBatch {
		return nil, apperror.Conflict("Batch %s is in semester %d of %d and cannot graduate yet",
			batch.Name, batch.CurrentSemester, academic.SemestersPerBatch)
	}

	semesters, err := s.semesterRepo.GetByBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load semesters: %w", err)
	}
	var finalID uint
	for _, sem := range semesters {
		if sem.Number == academic.SemestersPerBatch {
			finalID = sem.ID
		}
	}
	if finalID == 0 {
		return nil, fmt.Errorf("batch %d is missing its final semester row", id)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "graduate_batch",
		Entity: "batch",
	}
	if err := s.batchRepo.Graduate(ctx, id, finalID, log); err != nil {
		return nil, fmt.Errorf("failed to graduate batch: %w", err)
	}

	logger.Info("Batch %s graduated", batch.Name)
	return s.Get(ctx, id)
}
