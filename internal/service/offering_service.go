package service

import (
	"context"
	"encoding/json"
	"fmt"

	"obetrack/internal/domain/academic"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
	"obetrack/pkg/validator"
)

var _ serviceInterfaces.OfferingService = (*OfferingService)(nil)

// OfferingService manages course offerings. Every mutation is rejected while
// the target semester is locked.
type OfferingService struct {
	offeringRepo interfaces.OfferingRepository
	courseRepo   interfaces.CourseRepository
	semesterRepo interfaces.SemesterRepository
	facultyRepo  interfaces.FacultyRepository
}

// NewOfferingService creates a new course offering service
func NewOfferingService(
	offeringRepo interfaces.OfferingRepository,
	courseRepo   interfaces.CourseRepository,
	semesterRepo interfaces.SemesterRepository,
	facultyRepo  interfaces.FacultyRepository,
) *OfferingService {
	return &OfferingService{
		offeringRepo: offeringRepo,
		courseRepo:   courseRepo,
		semesterRepo: semesterRepo,
		facultyRepo:  facultyRepo,
	}
}

func (s *OfferingService) Create(ctx context.Context, principal *academic.Principal, req *academic.CreateOfferingRequest) (*academic.OfferingResponse, error) {
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

	semester, err := s.semesterRepo.GetByID(ctx, req.SemesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load semester: %w", err)
	}
	if semester == nil {
		return nil, apperror.NotFound("Semester %d not found", req.SemesterID)
	}
	if semester.IsLocked {
		return nil, apperror.Invalid("Semester %d is locked; offerings cannot be created under it", semester.Number)
	}

	if err := s.checkInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	existing, err := s.offeringRepo.GetByCourseAndSemester(ctx, req.CourseID, req.SemesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate offering: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Course %s is already offered in semester %d", course.CourseCode, semester.Number)
	}

	offering := &academic.CourseOffering{
		CourseID:     req.CourseID,
		SemesterID:   req.SemesterID,
		InstructorID: req.InstructorID,
	}
	metadata, _ := json.Marshal(map[string]interface{}{
		"course_id":   req.CourseID,
		"semester_id": req.SemesterID,
	})
	log := &academic.ActivityLog{
		UserID:   principal.ID,
		Action:   "create_course_offering",
		Entity:   "course_offering",
		Metadata: metadata,
	}
	if err := s.offeringRepo.Create(ctx, offering, log); err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}

	logger.Info("Created offering %d: course %s in semester %d", offering.ID, course.CourseCode, semester.Number)
	return s.Get(ctx, offering.ID)
}

func (s *OfferingService) Get(ctx context.Context, id uint) (*academic.OfferingResponse, error) {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load offering: %w", err)
	}
	if offering == nil {
		return nil, apperror.NotFound("Course offering %d not found", id)
	}
	return toOfferingResponse(offering), nil
}

// Update reassigns the instructor; course and semester are immutable.
func (s *OfferingService) Update(ctx context.Context, principal *academic.Principal, id uint, req *academic.UpdateOfferingRequest) (*academic.OfferingResponse, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load offering: %w", err)
	}
	if offering == nil {
		return nil, apperror.NotFound("Course offering %d not found", id)
	}
	if offering.Semester != nil && offering.Semester.IsLocked {
		return nil, apperror.Invalid("Semester %d is locked; the offering cannot be modified", offering.Semester.Number)
	}

	if err := s.checkInstructor(ctx, req.InstructorID); err != nil {
		return nil, err
	}

	offering.InstructorID = req.InstructorID
	offering.Instructor = nil
	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "update_course_offering",
		Entity: "course_offering",
	}
	if err := s.offeringRepo.Update(ctx, offering, log); err != nil {
		return nil, fmt.Errorf("failed to update offering: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *OfferingService) Delete(ctx context.Context, principal *academic.Principal, id uint) error {
	offering, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load offering: %w", err)
	}
	if offering == nil {
		return apperror.NotFound("Course offering %d not found", id)
	}
	if offering.Semester != nil && offering.Semester.IsLocked {
		return apperror.Invalid("Semester %d is locked; the offering cannot be deleted", offering.Semester.Number)
	}

	log := &academic.ActivityLog{
		UserID: principal.ID,
		Action: "delete_course_offering",
		Entity: "course_offering",
	}
	return s.offeringRepo.Delete(ctx, id, log)
}

func (s *OfferingService) List(ctx context.Context, query *academic.OfferingQuery) ([]*academic.OfferingResponse, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 20
	}

	offerings, total, err := s.offeringRepo.List(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offerings: %w", err)
	}
	return toOfferingResponses(offerings), total, nil
}

func (s *OfferingService) ListByInstructor(ctx context.Context, instructorID uint) ([]*academic.OfferingResponse, error) {
	offerings, err := s.offeringRepo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	return toOfferingResponses(offerings), nil
}

func (s *OfferingService) ListBySemester(ctx context.Context, semesterID uint) ([]*academic.OfferingResponse, error) {
	offerings, err := s.offeringRepo.ListBySemester(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	return toOfferingResponses(offerings), nil
}

// checkInstructor requires an existing faculty profile whose account carries
// the Faculty role.
func (s *OfferingService) checkInstructor(ctx context.Context, instructorID uint) error {
	instructor, err := s.facultyRepo.GetByID(ctx, instructorID)
	if err != nil {
		return fmt.Errorf("failed to load instructor: %w", err)
	}
	if instructor == nil {
		return apperror.NotFound("Instructor %d not found", instructorID)
	}
	if instructor.User == nil || instructor.User.Role != academic.RoleFaculty {
		return apperror.Invalid("User %d does not hold the Faculty role", instructor.UserID)
	}
	return nil
}

func toOfferingResponse(o *academic.CourseOffering) *academic.OfferingResponse {
	resp := &academic.OfferingResponse{
		ID:           o.ID,
		CourseID:     o.CourseID,
		SemesterID:   o.SemesterID,
		InstructorID: o.InstructorID,
		CreatedAt:    o.CreatedAt,
	}
	if o.Course != nil {
		resp.CourseCode = o.Course.CourseCode
		resp.CourseTitle = o.Course.CourseName
	}
	if o.Semester != nil {
		resp.SemesterNumber = o.Semester.Number
		resp.BatchID = o.Semester.BatchID
		if o.Semester.Batch != nil {
			resp.BatchName = o.Semester.Batch.Name
		}
	}
	if o.Instructor != nil && o.Instructor.User != nil {
		resp.InstructorName = o.Instructor.User.Name
		resp.InstructorEmail = o.Instructor.User.Email
	}
	return resp
}

func toOfferingResponses(offerings []*academic.CourseOffering) []*academic.OfferingResponse {
	responses := make([]*academic.OfferingResponse, 0, len(offerings))
	for _, o := range offerings {
		responses = append(responses, toOfferingResponse(o))
	}
	return responses
}
