package infrastructure

import (
	"context"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
)

// ProgramRepository resolves academic programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *academic.Program) error
	GetByID(ctx context.Context, id uint) (*academic.Program, error)
	CountBatches(ctx context.Context, programID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// BatchRepository manages batches and their generated semesters. The
// multi-row lifecycle mutations run inside one transaction together with
// their activity-log entries.
type BatchRepository interface {
	CreateWithSemesters(ctx context.Context, batch *academic.Batch, semesters []*academic.Semester, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*academic.Batch, error)
	GetByName(ctx context.Context, name string) (*academic.Batch, error)
	List(ctx context.Context, page, limit int) ([]*academic.Batch, int64, error)
	Update(ctx context.Context, batch *academic.Batch, log *academic.ActivityLog) error
	DeleteWithSemesters(ctx context.Context, id uint, log *academic.ActivityLog) error
	// AdvanceSemester locks the current semester, activates the next one
	// (nextID zero means none) and moves the batch pointer, atomically.
	AdvanceSemester(ctx context.Context, batchID, currentID, nextID uint, newCurrent int, log *academic.ActivityLog) error
	// Graduate locks the final semester and marks the batch Graduated.
	Graduate(ctx context.Context, batchID, finalSemesterID uint, log *academic.ActivityLog) error
}

// SemesterRepository reads semesters.
type SemesterRepository interface {
	GetByID(ctx context.Context, id uint) (*academic.Semester, error)
	GetByBatch(ctx context.Context, batchID uint) ([]*academic.Semester, error)
	GetByIDAndBatch(ctx context.Context, id, batchID uint) (*academic.Semester, error)
}

// CourseRepository reads courses.
type CourseRepository interface {
	Create(ctx context.Context, course *academic.Course) error
	GetByID(ctx context.Context, id uint) (*academic.Course, error)
	GetByCodes(ctx context.Context, codes []string) ([]*academic.Course, error)
}

// OfferingRepository manages course offerings.
type OfferingRepository interface {
	Create(ctx context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*academic.CourseOffering, error)
	GetByCourseAndSemester(ctx context.Context, courseID, semesterID uint) (*academic.CourseOffering, error)
	Update(ctx context.Context, offering *academic.CourseOffering, log *academic.ActivityLog) error
	Delete(ctx context.Context, id uint, log *academic.ActivityLog) error
	List(ctx context.Context, query *academic.OfferingQuery) ([]*academic.CourseOffering, int64, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]*academic.CourseOffering, error)
	ListBySemester(ctx context.Context, semesterID uint) ([]*academic.CourseOffering, error)
}

// FacultyRepository manages uploader profiles.
type FacultyRepository interface {
	GetByID(ctx context.Context, id uint) (*academic.FacultyProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*academic.FacultyProfile, error)
	Create(ctx context.Context, profile *academic.FacultyProfile) error
}

// UserRepository reads identity accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*academic.User, error)
}

// StudentRepository manages the pre-registered student roster.
type StudentRepository interface {
	CreateMany(ctx context.Context, students []*academic.PreRegisteredStudent, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*academic.PreRegisteredStudent, error)
	GetByRollNo(ctx context.Context, rollNo string) (*academic.PreRegisteredStudent, error)
	GetByBatch(ctx context.Context, batchID uint) ([]*academic.PreRegisteredStudent, error)
	CountByBatch(ctx context.Context, batchID uint) (int64, error)
}

// CloRepository manages course learning outcomes.
type CloRepository interface {
	Create(ctx context.Context, clo *outcome.Clo, log *academic.ActivityLog) error
	CreateMany(ctx context.Context, clos []*outcome.Clo, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*outcome.Clo, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*outcome.Clo, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*outcome.Clo, error)
	GetByCourseAndNumber(ctx context.Context, courseID uint, cloNumber int) (*outcome.Clo, error)
	Update(ctx context.Context, clo *outcome.Clo, log *academic.ActivityLog) error
	Delete(ctx context.Context, id uint, log *academic.ActivityLog) error
}

// PloRepository manages program learning outcomes.
type PloRepository interface {
	Create(ctx context.Context, plo *outcome.Plo, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*outcome.Plo, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*outcome.Plo, error)
	GetByProgram(ctx context.Context, programID uint) ([]*outcome.Plo, error)
	GetByProgramAndCode(ctx context.Context, programID uint, code string) (*outcome.Plo, error)
}

// MappingRepository manages flattened CLO-PLO mapping rows. ReplaceForCourse
// deletes all rows for the given CLOs under the course and inserts the new
// flattened set plus the activity log inside one transaction.
type MappingRepository interface {
	ReplaceForCourse(ctx context.Context, courseID uint, cloIDs []uint, rows []*outcome.CloPloMapping, log *academic.ActivityLog) error
	GetByID(ctx context.Context, id uint) (*outcome.CloPloMapping, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*outcome.CloPloMapping, error)
	Delete(ctx context.Context, id uint, log *academic.ActivityLog) error
	DeleteAllForCourse(ctx context.Context, courseID uint, log *academic.ActivityLog) (int64, error)
}

// ResultRepository manages per-student per-offering PLO result rows. The bulk
// upsert runs in one transaction, chunked, with an explicit existence check
// per chunk so inserted and updated counts stay observable.
type ResultRepository interface {
	BulkUpsert(ctx context.Context, records []*outcome.CourseStudentPloResult, chunkSize int, log *academic.ActivityLog) (inserted, updated int, err error)
	GetByRollNoAndBatch(ctx context.Context, rollNo string, batchID uint) ([]*outcome.CourseStudentPloResult, error)
	DistinctRollNos(ctx context.Context, batchID uint) ([]string, error)
	DeleteByOfferingAndStudent(ctx context.Context, offeringID, studentID uint) error
}

// PloCacheRepository manages the materialized attainment cache. The per
// student replace applies upserts and removals atomically; generated columns
// are never written.
type PloCacheRepository interface {
	ReplaceForStudent(ctx context.Context, rollNo string, upserts []*outcome.StudentProgramPloCache, removePloNumbers []int) error
	GetByRollNo(ctx context.Context, rollNo string) ([]*outcome.StudentProgramPloCache, error)
	GetByRollNoAndBatch(ctx context.Context, rollNo string, batchID uint) ([]*outcome.StudentProgramPloCache, error)
	DistinctRollNos(ctx context.Context, batchID uint) ([]string, error)
}

// ReportRepository serves the raw SQL projections behind the attainment
// query service.
type ReportRepository interface {
	BatchesWithPloData(ctx context.Context) ([]*outcome.BatchWithPloData, error)
	BatchStatistics(ctx context.Context, batchID uint) ([]*outcome.BatchPloStatistic, error)
	PloTitles(ctx context.Context, programID uint) (map[int]*outcome.Plo, error)
}
