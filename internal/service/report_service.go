package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/apperror"
	"obetrack/pkg/logger"
)

// Report cache keys. The attainment engine deletes these on every recompute,
// so a hit is never staler than the last completed upload.
const reportBatchesKey = "report:batches"

func batchReportKey(batchID uint) string {
	return fmt.Sprintf("report:batch:%d", batchID)
}

func batchStatsKey(batchID uint) string {
	return fmt.Sprintf("report:batch-stats:%d", batchID)
}

func studentReportKey(rollNo string) string {
	return "report:student:" + strings.ToLower(strings.TrimSpace(rollNo))
}

var _ serviceInterfaces.ReportService = (*ReportService)(nil)

// ReportService projects the attainment cache into display shapes, scaled to
// 0-100, behind a read-through Redis cache.
type ReportService struct {
	reportRepo   interfaces.ReportRepository
	ploCacheRepo interfaces.PloCacheRepository
	studentRepo  interfaces.StudentRepository
	batchRepo    interfaces.BatchRepository
	courseRepo   interfaces.CourseRepository
	reportCache  interfaces.ReportCache
	cacheTTL     time.Duration
}

// NewReportService creates a new attainment report service. reportCache may
// be nil when caching is disabled.
func NewReportService(
	reportRepo interfaces.ReportRepository,
	ploCacheRepo interfaces.PloCacheRepository,
	studentRepo interfaces.StudentRepository,
	batchRepo interfaces.BatchRepository,
	courseRepo interfaces.CourseRepository,
	reportCache interfaces.ReportCache,
	cacheTTL time.Duration,
) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		ploCacheRepo: ploCacheRepo,
		studentRepo:  studentRepo,
		batchRepo:    batchRepo,
		courseRepo:   courseRepo,
		reportCache:  reportCache,
		cacheTTL:     cacheTTL,
	}
}

func (s *ReportService) BatchesWithPloData(ctx context.Context) ([]*outcome.BatchWithPloData, error) {
	var batches []*outcome.BatchWithPloData
	if s.fromCache(ctx, reportBatchesKey, &batches) {
		return batches, nil
	}

	batches, err := s.reportRepo.BatchesWithPloData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches with attainment data: %w", err)
	}
	s.storeCache(ctx, reportBatchesKey, batches)
	return batches, nil
}

func (s *ReportService) BatchReport(ctx context.Context, batchID uint) (*outcome.BatchAttainmentReport, error) {
	var cached outcome.BatchAttainmentReport
	if s.fromCache(ctx, batchReportKey(batchID), &cached) {
		return &cached, nil
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", batchID)
	}

	students, err := s.studentRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	ploTitles, err := s.ploTitlesFor(ctx, batch.ProgramID)
	if err != nil {
		return nil, err
	}

	report := &outcome.BatchAttainmentReport{
		Batch: outcome.BatchRef{
			ID:   batch.ID,
			Name: batch.Name,
			Year: batch.Year,
		},
		Students: make([]outcome.StudentBatchRow, 0, len(students)),
	}
	if batch.Program != nil {
		report.Batch.ProgramName = batch.Program.Name
	}

	for _, student := range students {
		rows, err := s.ploCacheRepo.GetByRollNoAndBatch(ctx, student.RollNo, batchID)
		if err != nil {
			return nil, fmt.Errorf("failed to load attainment for %s: %w", student.RollNo, err)
		}

		views, err := s.toAttainmentViews(ctx, rows, ploTitles)
		if err != nil {
			return nil, err
		}

		achieved := 0
		for _, row := range rows {
			if row.IsAchieved {
				achieved++
			}
		}
		overall := outcome.OverallAchievement{
			TotalPlos:    len(rows),
			AchievedPlos: achieved,
		}
		if len(rows) > 0 {
			overall.AchievementPercentage = round2(float64(achieved) / float64(len(rows)) * 100)
		}

		report.Students = append(report.Students, outcome.StudentBatchRow{
			StudentID:          student.ID,
			RollNo:             student.RollNo,
			StudentName:        student.StudentName,
			PloAttainments:     views,
			OverallAchievement: overall,
		})
	}

	s.storeCache(ctx, batchReportKey(batchID), report)
	return report, nil
}

func (s *ReportService) StudentReport(ctx context.Context, rollNo string) (*outcome.StudentAttainmentReport, error) {
	key := studentReportKey(rollNo)
	var cached outcome.StudentAttainmentReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	student, err := s.studentRepo.GetByRollNo(ctx, strings.TrimSpace(rollNo))
	if err != nil {
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student == nil {
		return nil, apperror.NotFound("Student with roll number %s not found", rollNo)
	}

	rows, err := s.ploCacheRepo.GetByRollNo(ctx, student.RollNo)
	if err != nil {
		return nil, fmt.Errorf("failed to load attainment for %s: %w", student.RollNo, err)
	}

	var programID *uint
	report := &outcome.StudentAttainmentReport{
		Student: outcome.StudentRef{
			ID:     student.ID,
			RollNo: student.RollNo,
			Name:   student.StudentName,
		},
	}
	if student.Batch != nil {
		report.Student.BatchName = student.Batch.Name
		programID = student.Batch.ProgramID
	}

	ploTitles, err := s.ploTitlesFor(ctx, programID)
	if err != nil {
		return nil, err
	}
	report.PloAttainments, err = s.toAttainmentViews(ctx, rows, ploTitles)
	if err != nil {
		return nil, err
	}

	achieved := 0
	var sum float64
	for _, row := range rows {
		if row.IsAchieved {
			achieved++
		}
		sum += row.AverageAttainment
	}
	report.Summary = outcome.StudentSummary{
		TotalPlos:       len(rows),
		AchievedPlos:    achieved,
		NotAchievedPlos: len(rows) - achieved,
	}
	if len(rows) > 0 {
		report.Summary.OverallPercentage = round2(sum / float64(len(rows)) * 100)
	}

	s.storeCache(ctx, key, report)
	return report, nil
}

func (s *ReportService) BatchStatistics(ctx context.Context, batchID uint) ([]*outcome.BatchPloStatistic, error) {
	key := batchStatsKey(batchID)
	var stats []*outcome.BatchPloStatistic
	if s.fromCache(ctx, key, &stats) {
		return stats, nil
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if batch == nil {
		return nil, apperror.NotFound("Batch %d not found", batchID)
	}

	stats, err = s.reportRepo.BatchStatistics(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute batch statistics: %w", err)
	}
	s.storeCache(ctx, key, stats)
	return stats, nil
}

// toAttainmentViews projects cache rows onto the 0-100 display scale and
// resolves contributing course codes to names.
func (s *ReportService) toAttainmentViews(ctx context.Context, rows []*outcome.StudentProgramPloCache, ploTitles map[int]*outcome.Plo) ([]outcome.PloAttainmentView, error) {
	codeSet := make(map[string]bool)
	contributions := make([][]outcome.ContributingCourse, len(rows))
	for i, row := range rows {
		if len(row.ContributingCourses) > 0 {
			if err := json.Unmarshal(row.ContributingCourses, &contributions[i]); err != nil {
				return nil, fmt.Errorf("failed to decode contributing courses: %w", err)
			}
		}
		for _, contrib := range contributions[i] {
			codeSet[contrib.CourseCode] = true
		}
	}

	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	courses, err := s.courseRepo.GetByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve course names: %w", err)
	}
	nameByCode := make(map[string]string, len(courses))
	for _, course := range courses {
		nameByCode[course.CourseCode] = course.CourseName
	}

	views := make([]outcome.PloAttainmentView, 0, len(rows))
	for i, row := range rows {
		view := outcome.PloAttainmentView{
			PloNumber:         row.PloNumber,
			AverageAttainment: round2(row.AverageAttainment * 100),
			CourseCount:       row.CourseCount,
			IsAchieved:        row.IsAchieved,
			AchievementLevel:  row.AchievementLevel,
			LastCalculated:    row.LastCalculated,
		}
		if plo, ok := ploTitles[row.PloNumber]; ok {
			view.PloTitle = plo.Title
			view.PloDescription = plo.Description
		}
		view.ContributingCourses = make([]outcome.ContributingCourseView, 0, len(contributions[i]))
		for _, contrib := range contributions[i] {
			view.ContributingCourses = append(view.ContributingCourses, outcome.ContributingCourseView{
				CourseCode: contrib.CourseCode,
				CourseName: nameByCode[contrib.CourseCode],
				Attainment: round2(contrib.Attainment * 100),
			})
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ReportService) ploTitlesFor(ctx context.Context, programID *uint) (map[int]*outcome.Plo, error) {
	if programID == nil {
		return map[int]*outcome.Plo{}, nil
	}
	titles, err := s.reportRepo.PloTitles(ctx, *programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load PLO titles: %w", err)
	}
	return titles, nil
}

// fromCache reports whether the key was served from the report cache.
func (s *ReportService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.reportCache == nil {
		return false
	}
	payload, err := s.reportCache.Get(ctx, key)
	if err != nil {
		logger.Warn("Report cache read failed for %s: %v", key, err)
		return false
	}
	if payload == nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		logger.Warn("Report cache entry for %s is corrupt: %v", key, err)
		return false
	}
	return true
}

func (s *ReportService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.reportCache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode report cache entry %s: %v", key, err)
		return
	}
	if err := s.reportCache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		logger.Warn("Failed to store report cache entry %s: %v", key, err)
	}
}
