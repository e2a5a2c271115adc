package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/logger"
)

var _ serviceInterfaces.AttainmentService = (*AttainmentService)(nil)

// AttainmentService rebuilds the materialized per-student PLO cache from the
// course-level result rows. It is the only writer of that cache.
type AttainmentService struct {
	resultRepo   interfaces.ResultRepository
	ploCacheRepo interfaces.PloCacheRepository
	reportCache  interfaces.ReportCache

	now func() time.Time
}

// NewAttainmentService creates a new attainment aggregation service.
// reportCache may be nil when report caching is disabled.
func NewAttainmentService(
	resultRepo interfaces.ResultRepository,
	ploCacheRepo interfaces.PloCacheRepository,
	reportCache interfaces.ReportCache,
) *AttainmentService {
	return &AttainmentService{
		resultRepo:   resultRepo,
		ploCacheRepo: ploCacheRepo,
		reportCache:  reportCache,
		now:          time.Now,
	}
}

// Recalculate recomputes all 12 PLO aggregates for one student from scratch.
// PLOs that still have data are upserted; PLOs whose last contributing value
// disappeared are removed from the cache. The derivation is deterministic in
// the stored results, so re-running it without intervening writes is a no-op.
func (s *AttainmentService) Recalculate(ctx context.Context, rollNo string, batchID uint) error {
	results, err := s.resultRepo.GetByRollNoAndBatch(ctx, rollNo, batchID)
	if err != nil {
		return fmt.Errorf("failed to load results for %s: %w", rollNo, err)
	}

	calculatedAt := s.now().UTC()
	upserts := make([]*outcome.StudentProgramPloCache, 0, outcome.PloCount)
	removals := make([]int, 0)

	for plo := 1; plo <= outcome.PloCount; plo++ {
		var total float64
		var count int
		contributing := make([]outcome.ContributingCourse, 0, len(results))

		for _, result := range results {
			value := result.PloValue(plo)
			if value == nil {
				continue
			}
			total += *value
			count++

			courseCode := ""
			if result.Course != nil {
				courseCode = result.Course.CourseCode
			}
			contributing = append(contributing, outcome.ContributingCourse{
				CourseCode: courseCode,
				Attainment: round2(*value),
			})
		}

		if count == 0 {
			removals = append(removals, plo)
			continue
		}

		coursesJSON, err := json.Marshal(contributing)
		if err != nil {
			return fmt.Errorf("failed to encode contributing courses: %w", err)
		}

		upserts = append(upserts, &outcome.StudentProgramPloCache{
			RollNo:              rollNo,
			BatchID:             batchID,
			PloNumber:           plo,
			TotalAttainment:     round2(total),
			CourseCount:         count,
			AverageAttainment:   round2(total / float64(count)),
			ContributingCourses: coursesJSON,
			LastCalculated:      calculatedAt,
		})
	}

	if err := s.ploCacheRepo.ReplaceForStudent(ctx, rollNo, upserts, removals); err != nil {
		return fmt.Errorf("failed to store attainment for %s: %w", rollNo, err)
	}

	s.invalidateReports(ctx, rollNo, batchID)
	return nil
}

// RecalculateForStudents recomputes each student in turn and fails on the
// first error so the caller can surface it.
func (s *AttainmentService) RecalculateForStudents(ctx context.Context, rollNos []string, batchID uint) error {
	for _, rollNo := range rollNos {
		if err := s.Recalculate(ctx, rollNo, batchID); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateForBatch is the administrative repair path: it recomputes every
// student that has result rows or stale cache rows under the batch.
func (s *AttainmentService) RecalculateForBatch(ctx context.Context, batchID uint) error {
	fromResults, err := s.resultRepo.DistinctRollNos(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to list students with results: %w", err)
	}
	fromCache, err := s.ploCacheRepo.DistinctRollNos(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to list students with cache rows: %w", err)
	}

	seen := make(map[string]bool, len(fromResults)+len(fromCache))
	rollNos := make([]string, 0, len(fromResults)+len(fromCache))
	for _, lists := range [][]string{fromResults, fromCache} {
		for _, rollNo := range lists {
			if !seen[rollNo] {
				seen[rollNo] = true
				rollNos = append(rollNos, rollNo)
			}
		}
	}

	logger.Info("Recalculating attainment for %d students in batch %d", len(rollNos), batchID)
	return s.RecalculateForStudents(ctx, rollNos, batchID)
}

// invalidateReports drops the report cache entries touched by a recompute.
// Invalidation failure is logged, not returned: the database already holds
// the fresh rows and the entries expire on their own.
func (s *AttainmentService) invalidateReports(ctx context.Context, rollNo string, batchID uint) {
	if s.reportCache == nil {
		return
	}
	keys := []string{
		reportBatchesKey,
		batchReportKey(batchID),
		batchStatsKey(batchID),
		studentReportKey(rollNo),
	}
	if err := s.reportCache.Delete(ctx, keys...); err != nil {
		logger.Warn("Failed to invalidate report cache for %s: %v", rollNo, err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
