package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingAttainmentService records the batches it was asked to recompute.
type recordingAttainmentService struct {
	mu      sync.Mutex
	batches []uint
	done    chan struct{}
}

func newRecordingAttainmentService() *recordingAttainmentService {
	return &recordingAttainmentService{done: make(chan struct{}, 16)}
}

func (s *recordingAttainmentService) Recalculate(_ context.Context, _ string, _ uint) error {
	return nil
}

func (s *recordingAttainmentService) RecalculateForStudents(_ context.Context, _ []string, _ uint) error {
	return nil
}

func (s *recordingAttainmentService) RecalculateForBatch(_ context.Context, batchID uint) error {
	s.mu.Lock()
	s.batches = append(s.batches, batchID)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *recordingAttainmentService) processed() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.batches...)
}

func TestQueue_ProcessesEnqueuedJobs(t *testing.T) {
	svc := newRecordingAttainmentService()
	q := NewInMemoryQueue(4, 1)
	q.SetAttainmentService(svc)
	q.StartWorkers()
	defer q.Stop()

	if err := q.EnqueueBatchRecalc(context.Background(), 7); err != nil {
		t.Fatalf("EnqueueBatchRecalc failed: %v", err)
	}

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the worker to process the job")
	}

	processed := svc.processed()
	if len(processed) != 1 || processed[0] != 7 {
		t.Errorf("Expected batch 7 to be processed, got %v", processed)
	}
}

func TestQueue_FullQueueRejected(t *testing.T) {
	q := NewInMemoryQueue(1, 1)
	// no workers started, so the buffer fills

	if err := q.EnqueueBatchRecalc(context.Background(), 1); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}
	err := q.EnqueueBatchRecalc(context.Background(), 2)
	if err == nil {
		t.Fatal("Expected a full queue to reject the job")
	}
	expected := "recalculation queue is full"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestQueue_StartWithoutServiceDoesNothing(t *testing.T) {
	q := NewInMemoryQueue(1, 1)
	q.StartWorkers()
	q.Stop()
}
