package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.ResultService = (*ResultService)(nil)

// ResultService ingests bulk PLO result uploads for a course offering and
// synchronously recomputes the attainment cache for every affected student,
// so a successful upload response always reflects a fresh cache.
type ResultService struct {
	offeringRepo interfaces.OfferingRepository
	studentRepo  interfaces.StudentRepository
	facultyRepo  interfaces.FacultyRepository
	userRepo     interfaces.UserRepository
	resultRepo   interfaces.ResultRepository
	attainment   serviceInterfaces.AttainmentService
	chunkSize    int
}

// NewResultService creates a new result ingestion service
func NewResultService(
	offeringRepo interfaces.OfferingRepository,
	studentRepo interfaces.StudentRepository,
	facultyRepo interfaces.FacultyRepository,
	userRepo interfaces.UserRepository,
	resultRepo interfaces.ResultRepository,
	attainment serviceInterfaces.AttainmentService,
	chunkSize int,
) *ResultService {
	return &ResultService{
		offeringRepo: offeringRepo,
		studentRepo:  studentRepo,
		facultyRepo:  facultyRepo,
		userRepo:     userRepo,
		resultRepo:   resultRepo,
		attainment:   attainment,
		chunkSize:    chunkSize,
	}
}

// Upload validates and persists one bulk upload. Unknown roll numbers are
// skipped with a warning; roll numbers belonging to a different batch than
// the offering's are collected and, after the whole payload is checked,
// abort the upload with nothing written.
func (s *ResultService) Upload(ctx context.Context, principal *academic.Principal, req *outcome.UploadCoursePloResultsRequest) (*outcome.UploadResult, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	offering, err := s.offeringRepo.GetByID(ctx, req.CourseOfferingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load course offering: %w", err)
	}
	if offering == nil {
		return nil, apperror.NotFound("Course offering %d not found", req.CourseOfferingID)
	}
	if offering.Semester == nil {
		return nil, fmt.Errorf("course offering %d has no semester", offering.ID)
	}
	if offering.Semester.IsLocked {
		return nil, apperror.Invalid("Semester %d is locked; results cannot be uploaded", offering.Semester.Number)
	}

	uploader, err := s.ensureUploaderProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	batchID := offering.Semester.BatchID
	warnings := make([]string, 0)
	batchErrors := make([]string, 0)
	records := make([]*outcome.CourseStudentPloResult, 0, len(req.Students))
	recordByStudent := make(map[uint]int)

	for _, row := range req.Students {
		rollNo := strings.TrimSpace(row.RollNo)
		if rollNo == "" {
			warnings = append(warnings, "Row with empty roll number skipped")
			continue
		}

		student, err := s.studentRepo.GetByRollNo(ctx, rollNo)
		if err != nil {
			return nil, fmt.Errorf("failed to look up roll number %s: %w", rollNo, err)
		}
		if student == nil {
			warnings = append(warnings, fmt.Sprintf("Roll number %s is not pre-registered, row skipped", rollNo))
			continue
		}
		if student.BatchID != batchID {
			batchErrors = append(batchErrors, fmt.Sprintf("Roll number %s belongs to batch %d, not batch %d of this offering",
				student.RollNo, student.BatchID, batchID))
			continue
		}

		record := &outcome.CourseStudentPloResult{
			CourseOfferingID: offering.ID,
			CourseID:         offering.CourseID,
			BatchID:          batchID,
			SemesterID:       offering.SemesterID,
			StudentID:        student.ID,
			RollNo:           student.RollNo,
			StudentName:      student.StudentName,
			UploadedBy:       uploader.ID,
		}
		for plo := 1; plo <= outcome.PloCount; plo++ {
			if raw := row.Plo(plo); raw != nil {
				fraction := *raw / 100
				record.SetPloValue(plo, &fraction)
			}
		}

		// a later row for the same student replaces the earlier one
		if idx, dup := recordByStudent[student.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("Duplicate roll number %s in payload, keeping the last row", student.RollNo))
			records[idx] = record
			continue
		}
		recordByStudent[student.ID] = len(records)
		records = append(records, record)
	}

	if len(batchErrors) > 0 {
		return nil, apperror.InvalidWithDetails("Validation errors found", batchErrors, warnings)
	}
	if len(records) == 0 {
		return nil, apperror.InvalidWithDetails("No valid student data to upload", nil, warnings)
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"course_offering_id": offering.ID,
		"rows_received":      len(req.Students),
		"rows_processed":     len(records),
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "upload_plo_results",
		Entity:   "course_student_plo_result",
		Metadata: metadata,
	}
	inserted, updated, err := s.resultRepo.BulkUpsert(ctx, records, s.chunkSize, log)
	if err != nil {
		return nil, fmt.Errorf("failed to store results: %w", err)
	}

	rollNos := make([]string, 0, len(records))
	for _, record := range records {
		rollNos = append(rollNos, record.RollNo)
	}
	if err := s.attainment.RecalculateForStudents(ctx, rollNos, batchID); err != nil {
		return nil, fmt.Errorf("results stored but attainment recalculation failed: %w", err)
	}

	logger.Info("Uploaded PLO results for offering %d: %d inserted, %d updated, %d warnings",
		offering.ID, inserted, updated, len(warnings))

	return &outcome.UploadResult{
		Success: true,
		Message: fmt.Sprintf("Processed %d of %d result rows", len(records), len(req.Students)),
		Stats: outcome.UploadStats{
			TotalReceived:         len(req.Students),
			SuccessfullyProcessed: len(records),
			Inserted:              inserted,
			Updated:               updated,
			Warnings:              warnings,
		},
	}, nil
}

// ensureUploaderProfile resolves the principal's faculty profile for upload
// attribution. Admin principals get one provisioned on first upload; faculty
// principals without a profile are rejected.
func (s *ResultService) ensureUploaderProfile(ctx context.Context, principal *academic.Principal) (*academic.FacultyProfile, error) {
	profile, err := s.facultyRepo.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load uploader profile: %w", err)
	}
	if profile != nil {
		return profile, nil
	}

	var designation string
	switch principal.Role {
	case academic.RoleAdmin:
		designation = "Administrator"
	case academic.RoleSuperAdmin:
		designation = "System Administrator"
	default:
		return nil, apperror.Invalid("No faculty profile found for user %d", principal.ID)
	}

	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load uploader account: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User %d not found", principal.ID)
	}

	profile = &academic.FacultyProfile{
		UserID:      user.ID,
		Designation: designation,
	}
	if err := s.facultyRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to provision uploader profile: %w", err)
	}
	logger.Info("Provisioned %s profile for user %d", designation, user.ID)
	return profile, nil
}

// validationError converts validator output into a client-facing error.
func validationError(err error) error {
	details := validator.FormatValidationError(err)
	messages := make([]string, 0, len(details))
	for _, detail := range details {
		messages = append(messages, detail.Message)
	}
	if len(messages) == 0 {
		return apperror.Invalid("Invalid request: %v", err)
	}
	return apperror.InvalidWithDetails("Validation failed", messages, nil)
}
