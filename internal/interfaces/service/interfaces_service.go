package service

import (
	"context"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
)

// AttainmentService recomputes the per-student program-level PLO cache from
// course-level results. Implementations must be idempotent: re-running for
// the same (roll_no, batch) with no intervening writes changes nothing.
type AttainmentService interface {
	Recalculate(ctx context.Context, rollNo string, batchID uint) error
	RecalculateForStudents(ctx context.Context, rollNos []string, batchID uint) error
	RecalculateForBatch(ctx context.Context, batchID uint) error
}

// OfferingService manages course offerings.
type OfferingService interface {
	Create(ctx context.Context, principal *academic.Principal, req *academic.CreateOfferingRequest) (*academic.OfferingResponse, error)
	Get(ctx context.Context, id uint) (*academic.OfferingResponse, error)
	Update(ctx context.Context, principal *academic.Principal, id uint, req *academic.UpdateOfferingRequest) (*academic.OfferingResponse, error)
	Delete(ctx context.Context, principal *academic.Principal, id uint) error
	List(ctx context.Context, query *academic.OfferingQuery) ([]*academic.OfferingResponse, int64, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]*academic.OfferingResponse, error)
	ListBySemester(ctx context.Context, semesterID uint) ([]*academic.OfferingResponse, error)
}

// CloService manages course learning outcomes.
type CloService interface {
	Create(ctx context.Context, principal *academic.Principal, req *outcome.CreateCloRequest) (*outcome.Clo, error)
	Get(ctx context.Context, id uint) (*outcome.Clo, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*outcome.Clo, error)
	Update(ctx context.Context, principal *academic.Principal, id uint, req *outcome.UpdateCloRequest) (*outcome.Clo, error)
	Delete(ctx context.Context, principal *academic.Principal, id uint) error
}

// PloService manages program learning outcomes.
type PloService interface {
	Create(ctx context.Context, principal *academic.Principal, req *outcome.CreatePloRequest) (*outcome.Plo, error)
	Get(ctx context.Context, id uint) (*outcome.Plo, error)
	ListByProgram(ctx context.Context, programID uint) ([]*outcome.Plo, error)
}

// MappingService manages CLO-PLO mappings. BulkReplace is all-or-nothing:
// any validation failure leaves existing mappings untouched.
type MappingService interface {
	BulkReplace(ctx context.Context, principal *academic.Principal, req *outcome.BulkCloPloMappingRequest) (int, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*outcome.CloPloMapping, error)
	Delete(ctx context.Context, principal *academic.Principal, id uint) error
	DeleteAllForCourse(ctx context.Context, principal *academic.Principal, courseID uint) (int64, error)
}

// ResultService ingests bulk per-student PLO results for a course offering
// and triggers the attainment recompute for every affected student.
type ResultService interface {
	Upload(ctx context.Context, principal *academic.Principal, req *outcome.UploadCoursePloResultsRequest) (*outcome.UploadResult, error)
}

// BatchService manages batch lifecycle: creation with generated semesters,
// semester advancement and graduation.
type BatchService interface {
	Create(ctx context.Context, principal *academic.Principal, req *academic.CreateBatchRequest) (*academic.Batch, error)
	Get(ctx context.Context, id uint) (*academic.Batch, error)
	List(ctx context.Context, page, limit int) ([]*academic.Batch, int64, error)
	Update(ctx context.Context, principal *academic.Principal, id uint, req *academic.UpdateBatchRequest) (*academic.Batch, error)
	Delete(ctx context.Context, principal *academic.Principal, id uint) error
	MoveToNextSemester(ctx context.Context, principal *academic.Principal, id uint) (*academic.Batch, error)
	Graduate(ctx context.Context, principal *academic.Principal, id uint) (*academic.Batch, error)
}

// StudentService manages the pre-registered student roster.
type StudentService interface {
	PreRegister(ctx context.Context, principal *academic.Principal, req *academic.PreRegisterStudentsRequest) (int, error)
	ListByBatch(ctx context.Context, batchID uint) ([]*academic.PreRegisteredStudent, error)
}

// ReportService serves the attainment report projections, read-through
// cached.
type ReportService interface {
	BatchesWithPloData(ctx context.Context) ([]*outcome.BatchWithPloData, error)
	BatchReport(ctx context.Context, batchID uint) (*outcome.BatchAttainmentReport, error)
	StudentReport(ctx context.Context, rollNo string) (*outcome.StudentAttainmentReport, error)
	BatchStatistics(ctx context.Context, batchID uint) ([]*outcome.BatchPloStatistic, error)
}
