package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	"obetrack/internal/infrastructure/repository"
	"obetrack/pkg/apperror"
)

// stubReportRepository serves canned SQL projections for tests.
type stubReportRepository struct {
	batches    []*outcome.BatchWithPloData
	statistics []*outcome.BatchPloStatistic
	ploTitles  map[int]*outcome.Plo
	statCalls  int
}

func (r *stubReportRepository) BatchesWithPloData(_ context.Context) ([]*outcome.BatchWithPloData, error) {
	return r.batches, nil
}

func (r *stubReportRepository) BatchStatistics(_ context.Context, _ uint) ([]*outcome.BatchPloStatistic, error) {
	r.statCalls++
	return r.statistics, nil
}

func (r *stubReportRepository) PloTitles(_ context.Context, _ uint) (map[int]*outcome.Plo, error) {
	if r.ploTitles == nil {
		return map[int]*outcome.Plo{}, nil
	}
	return r.ploTitles, nil
}

type reportFixture struct {
	svc         *ReportService
	reportRepo  *stubReportRepository
	cacheRepo   *repository.MockPloCacheRepository
	studentRepo *repository.MockStudentRepository
	reportCache *memoryReportCache
}

func newReportFixture() *reportFixture {
	reportRepo := &stubReportRepository{
		ploTitles: map[int]*outcome.Plo{
			1: {Code: "PLO-1", Title: "Engineering Knowledge", Description: "Apply engineering fundamentals"},
		},
	}
	cacheRepo := repository.NewMockPloCacheRepository()
	studentRepo := repository.NewMockStudentRepository()
	semRepo := repository.NewMockSemesterRepository()
	batchRepo := repository.NewMockBatchRepository(semRepo)
	courseRepo := repository.NewMockCourseRepository()
	reportCache := newMemoryReportCache()

	programID := uint(1)
	batchRepo.Add(&academic.Batch{ID: 1, Name: "FA21", Year: 2021, ProgramID: &programID, Status: academic.BatchStatusActive})
	_ = courseRepo.Create(context.Background(), &academic.Course{ID: 1, ProgramID: 1, CourseCode: "CS101", CourseName: "Programming Fundamentals"})

	svc := NewReportService(reportRepo, cacheRepo, studentRepo, batchRepo, courseRepo, reportCache, time.Minute)
	return &reportFixture{
		svc:         svc,
		reportRepo:  reportRepo,
		cacheRepo:   cacheRepo,
		studentRepo: studentRepo,
		reportCache: reportCache,
	}
}

func (f *reportFixture) seedStudent(t *testing.T, rollNo string, avg float64) {
	t.Helper()
	programID := uint(1)
	f.studentRepo.Add(&academic.PreRegisteredStudent{
		RollNo:      rollNo,
		StudentName: "Student",
		BatchID:     1,
		Batch:       &academic.Batch{ID: 1, Name: "FA21", ProgramID: &programID},
	})
	contributing, _ := json.Marshal([]outcome.ContributingCourse{{CourseCode: "CS101", Attainment: avg}})
	row := &outcome.StudentProgramPloCache{
		RollNo:              rollNo,
		BatchID:             1,
		PloNumber:           1,
		TotalAttainment:     avg,
		CourseCount:         1,
		AverageAttainment:   avg,
		ContributingCourses: contributing,
	}
	if err := f.cacheRepo.ReplaceForStudent(context.Background(), rollNo, []*outcome.StudentProgramPloCache{row}, nil); err != nil {
		t.Fatalf("Seeding cache failed: %v", err)
	}
}

func TestStudentReport_ScalesToDisplayRange(t *testing.T) {
	f := newReportFixture()
	f.seedStudent(t, "FA21-001", 0.755)

	report, err := f.svc.StudentReport(context.Background(), "FA21-001")
	if err != nil {
		t.Fatalf("StudentReport failed: %v", err)
	}
	if report.Student.RollNo != "FA21-001" || report.Student.BatchName != "FA21" {
		t.Errorf("Unexpected student ref: %+v", report.Student)
	}
	if len(report.PloAttainments) != 1 {
		t.Fatalf("Expected 1 attainment row, got %d", len(report.PloAttainments))
	}

	view := report.PloAttainments[0]
	if view.AverageAttainment != 75.5 {
		t.Errorf("Expected average 75.5 on the display scale, got %v", view.AverageAttainment)
	}
	if view.PloTitle != "Engineering Knowledge" {
		t.Errorf("Expected the PLO title to be resolved, got '%s'", view.PloTitle)
	}
	if len(view.ContributingCourses) != 1 {
		t.Fatalf("Expected 1 contributing course, got %d", len(view.ContributingCourses))
	}
	if view.ContributingCourses[0].CourseName != "Programming Fundamentals" {
		t.Errorf("Expected course code to resolve to its name, got '%s'", view.ContributingCourses[0].CourseName)
	}
	if report.Summary.TotalPlos != 1 || report.Summary.AchievedPlos != 1 || report.Summary.NotAchievedPlos != 0 {
		t.Errorf("Unexpected summary: %+v", report.Summary)
	}
	if report.Summary.OverallPercentage != 75.5 {
		t.Errorf("Expected overall percentage 75.5, got %v", report.Summary.OverallPercentage)
	}
}

func TestStudentReport_UnknownRollNo(t *testing.T) {
	f := newReportFixture()

	_, err := f.svc.StudentReport(context.Background(), "FA21-404")
	if err == nil {
		t.Fatal("Expected unknown roll number to fail")
	}
	if !apperror.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	expected := "Student with roll number FA21-404 not found"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestBatchReport_AggregatesPerStudent(t *testing.T) {
	f := newReportFixture()
	f.seedStudent(t, "FA21-001", 0.8)
	f.seedStudent(t, "FA21-002", 0.4)

	report, err := f.svc.BatchReport(context.Background(), 1)
	if err != nil {
		t.Fatalf("BatchReport failed: %v", err)
	}
	if report.Batch.Name != "FA21" {
		t.Errorf("Unexpected batch ref: %+v", report.Batch)
	}
	if len(report.Students) != 2 {
		t.Fatalf("Expected 2 students, got %d", len(report.Students))
	}

	achieved := report.Students[0].OverallAchievement
	if achieved.TotalPlos != 1 || achieved.AchievedPlos != 1 || achieved.AchievementPercentage != 100 {
		t.Errorf("Unexpected achievement for first student: %+v", achieved)
	}
	missed := report.Students[1].OverallAchievement
	if missed.AchievedPlos != 0 || missed.AchievementPercentage != 0 {
		t.Errorf("Unexpected achievement for second student: %+v", missed)
	}
}

func TestBatchStatistics_ServedFromCacheOnRepeat(t *testing.T) {
	f := newReportFixture()
	f.reportRepo.statistics = []*outcome.BatchPloStatistic{
		{PloNumber: 1, StudentCount: 2, BatchAverage: 60, MinAttainment: 40, MaxAttainment: 80, AchievedCount: 1},
	}

	first, err := f.svc.BatchStatistics(context.Background(), 1)
	if err != nil {
		t.Fatalf("BatchStatistics failed: %v", err)
	}
	second, err := f.svc.BatchStatistics(context.Background(), 1)
	if err != nil {
		t.Fatalf("Second BatchStatistics failed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Expected 1 statistic row, got %d and %d", len(first), len(second))
	}
	if f.reportRepo.statCalls != 1 {
		t.Errorf("Expected the second call to be served from cache, repository hit %d times", f.reportRepo.statCalls)
	}
}

func TestBatchesWithPloData_UsesCache(t *testing.T) {
	f := newReportFixture()
	f.reportRepo.batches = []*outcome.BatchWithPloData{
		{BatchID: 1, BatchName: "FA21", BatchYear: 2021, ProgramName: "BS Computer Science", StudentCount: 12},
	}

	batches, err := f.svc.BatchesWithPloData(context.Background())
	if err != nil {
		t.Fatalf("BatchesWithPloData failed: %v", err)
	}
	if len(batches) != 1 || batches[0].StudentCount != 12 {
		t.Fatalf("Unexpected batches: %+v", batches)
	}

	if cached, _ := f.reportCache.Get(context.Background(), reportBatchesKey); cached == nil {
		t.Error("Expected the batch listing to be stored in the report cache")
	}
}
