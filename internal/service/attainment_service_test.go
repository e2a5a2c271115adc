package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"obetrack/internal/domain/academic"
	"obetrack/internal/domain/outcome"
	"obetrack/internal/infrastructure/repository"
)

// memoryReportCache is an in-memory ReportCache for tests.
type memoryReportCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryReportCache() *memoryReportCache {
	return &memoryReportCache{entries: make(map[string][]byte)}
}

func (c *memoryReportCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memoryReportCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryReportCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func newAttainmentFixture() (*AttainmentService, *repository.MockResultRepository, *repository.MockPloCacheRepository) {
	resultRepo := repository.NewMockResultRepository()
	cacheRepo := repository.NewMockPloCacheRepository()
	svc := NewAttainmentService(resultRepo, cacheRepo, nil)
	return svc, resultRepo, cacheRepo
}

func addResult(repo *repository.MockResultRepository, rollNo string, batchID, offeringID, courseID uint, values map[int]float64) {
	if _, ok := repo.Courses[courseID]; !ok {
		repo.Courses[courseID] = &academic.Course{ID: courseID, CourseCode: fmt.Sprintf("CS10%d", courseID), CourseName: "Course"}
	}
	record := &outcome.CourseStudentPloResult{
		CourseOfferingID: offeringID,
		CourseID:         courseID,
		BatchID:          batchID,
		SemesterID:       1,
		StudentID:        offeringID,
		RollNo:           rollNo,
		StudentName:      "Student",
	}
	for plo, v := range values {
		value := v
		record.SetPloValue(plo, &value)
	}
	repo.Add(record)
}

func TestAttainmentRecalculate_AveragesAndLevels(t *testing.T) {
	svc, resultRepo, cacheRepo := newAttainmentFixture()
	addResult(resultRepo, "FA21-001", 1, 1, 1, map[int]float64{1: 0.6})
	addResult(resultRepo, "FA21-001", 1, 2, 2, map[int]float64{1: 0.8, 2: 0.9})

	if err := svc.Recalculate(context.Background(), "FA21-001", 1); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	rows, err := cacheRepo.GetByRollNo(context.Background(), "FA21-001")
	if err != nil {
		t.Fatalf("GetByRollNo failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 cache rows, got %d", len(rows))
	}

	plo1 := rows[0]
	if plo1.PloNumber != 1 {
		t.Fatalf("Expected PLO 1 first, got %d", plo1.PloNumber)
	}
	if plo1.CourseCount != 2 {
		t.Errorf("Expected course count 2, got %d", plo1.CourseCount)
	}
	if plo1.TotalAttainment != 1.4 {
		t.Errorf("Expected total 1.4, got %v", plo1.TotalAttainment)
	}
	if plo1.AverageAttainment != 0.7 {
		t.Errorf("Expected average 0.7, got %v", plo1.AverageAttainment)
	}
	if !plo1.IsAchieved {
		t.Error("Expected PLO 1 to be achieved")
	}
	if plo1.AchievementLevel != "Medium" {
		t.Errorf("Expected level Medium, got %s", plo1.AchievementLevel)
	}

	var contributing []outcome.ContributingCourse
	if err := json.Unmarshal(plo1.ContributingCourses, &contributing); err != nil {
		t.Fatalf("Failed to decode contributing courses: %v", err)
	}
	if len(contributing) != 2 {
		t.Fatalf("Expected 2 contributing courses, got %d", len(contributing))
	}
	if contributing[0].Attainment != 0.6 || contributing[1].Attainment != 0.8 {
		t.Errorf("Unexpected contributing attainments: %+v", contributing)
	}

	plo2 := rows[1]
	if plo2.PloNumber != 2 || plo2.CourseCount != 1 {
		t.Fatalf("Unexpected PLO 2 row: %+v", plo2)
	}
	if plo2.AverageAttainment != 0.9 || plo2.AchievementLevel != "High" {
		t.Errorf("Expected average 0.9 at level High, got %v %s", plo2.AverageAttainment, plo2.AchievementLevel)
	}
}

func TestAttainmentRecalculate_BelowThresholdNotAchieved(t *testing.T) {
	svc, resultRepo, cacheRepo := newAttainmentFixture()
	addResult(resultRepo, "FA21-002", 1, 1, 1, map[int]float64{3: 0.45})

	if err := svc.Recalculate(context.Background(), "FA21-002", 1); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	rows, _ := cacheRepo.GetByRollNo(context.Background(), "FA21-002")
	if len(rows) != 1 {
		t.Fatalf("Expected 1 cache row, got %d", len(rows))
	}
	if rows[0].IsAchieved {
		t.Error("Expected PLO 3 to be unachieved at 0.45")
	}
	if rows[0].AchievementLevel != "Low" {
		t.Errorf("Expected level Low, got %s", rows[0].AchievementLevel)
	}
}

func TestAttainmentRecalculate_RemovesStalePlos(t *testing.T) {
	svc, resultRepo, cacheRepo := newAttainmentFixture()
	stale := &outcome.StudentProgramPloCache{
		RollNo:            "FA21-003",
		BatchID:           1,
		PloNumber:         5,
		TotalAttainment:   0.9,
		CourseCount:       1,
		AverageAttainment: 0.9,
	}
	if err := cacheRepo.ReplaceForStudent(context.Background(), "FA21-003", []*outcome.StudentProgramPloCache{stale}, nil); err != nil {
		t.Fatalf("Seeding cache failed: %v", err)
	}
	addResult(resultRepo, "FA21-003", 1, 1, 1, map[int]float64{1: 0.8})

	if err := svc.Recalculate(context.Background(), "FA21-003", 1); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	rows, _ := cacheRepo.GetByRollNo(context.Background(), "FA21-003")
	if len(rows) != 1 {
		t.Fatalf("Expected 1 cache row after recompute, got %d", len(rows))
	}
	if rows[0].PloNumber != 1 {
		t.Errorf("Expected only PLO 1 to survive, got PLO %d", rows[0].PloNumber)
	}
}

func TestAttainmentRecalculate_Idempotent(t *testing.T) {
	svc, resultRepo, cacheRepo := newAttainmentFixture()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	addResult(resultRepo, "FA21-004", 1, 1, 1, map[int]float64{1: 0.6, 4: 0.55})
	addResult(resultRepo, "FA21-004", 1, 2, 2, map[int]float64{1: 0.8})

	snapshot := func() string {
		rows, err := cacheRepo.GetByRollNo(context.Background(), "FA21-004")
		if err != nil {
			t.Fatalf("GetByRollNo failed: %v", err)
		}
		data, err := json.Marshal(rows)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return string(data)
	}

	if err := svc.Recalculate(context.Background(), "FA21-004", 1); err != nil {
		t.Fatalf("First recalculate failed: %v", err)
	}
	first := snapshot()

	if err := svc.Recalculate(context.Background(), "FA21-004", 1); err != nil {
		t.Fatalf("Second recalculate failed: %v", err)
	}
	second := snapshot()

	if first != second {
		t.Errorf("Recalculate is not idempotent:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestAttainmentRecalculate_InvalidatesReportCache(t *testing.T) {
	resultRepo := repository.NewMockResultRepository()
	cacheRepo := repository.NewMockPloCacheRepository()
	reportCache := newMemoryReportCache()
	svc := NewAttainmentService(resultRepo, cacheRepo, reportCache)

	ctx := context.Background()
	keys := []string{
		reportBatchesKey,
		batchReportKey(1),
		batchStatsKey(1),
		studentReportKey("FA21-005"),
	}
	for _, key := range keys {
		if err := reportCache.Set(ctx, key, []byte("cached"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	addResult(resultRepo, "FA21-005", 1, 1, 1, map[int]float64{1: 0.7})

	if err := svc.Recalculate(ctx, "FA21-005", 1); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	for _, key := range keys {
		if value, _ := reportCache.Get(ctx, key); value != nil {
			t.Errorf("Expected cache key %s to be invalidated", key)
		}
	}
}

func TestRecalculateForBatch_CoversStaleCacheRows(t *testing.T) {
	svc, resultRepo, cacheRepo := newAttainmentFixture()
	addResult(resultRepo, "FA21-006", 1, 1, 1, map[int]float64{1: 0.6})

	// stale cache row for a student whose results were removed
	stale := &outcome.StudentProgramPloCache{
		RollNo: "FA21-007", BatchID: 1, PloNumber: 2,
		TotalAttainment: 0.8, CourseCount: 1, AverageAttainment: 0.8,
	}
	if err := cacheRepo.ReplaceForStudent(context.Background(), "FA21-007", []*outcome.StudentProgramPloCache{stale}, nil); err != nil {
		t.Fatalf("Seeding cache failed: %v", err)
	}

	if err := svc.RecalculateForBatch(context.Background(), 1); err != nil {
		t.Fatalf("RecalculateForBatch failed: %v", err)
	}

	fresh, _ := cacheRepo.GetByRollNo(context.Background(), "FA21-006")
	if len(fresh) != 1 {
		t.Errorf("Expected 1 cache row for FA21-006, got %d", len(fresh))
	}
	gone, _ := cacheRepo.GetByRollNo(context.Background(), "FA21-007")
	if len(gone) != 0 {
		t.Errorf("Expected stale rows for FA21-007 to be removed, got %d", len(gone))
	}
}
