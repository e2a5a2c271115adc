package queue

import (
	"context"
	"fmt"
	"sync"

	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"
	"obetrack/pkg/logger"
)

var _ interfaces.QueueService = (*Queue)(nil)

// Queue carries administrative batch-recalculation jobs on an in-memory
// channel. Upload-triggered recomputes never pass through here; they run
// synchronously so the upload response reflects the cache.
type Queue struct {
	recalcQueue chan interfaces.RecalcJob

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	attainmentService serviceInterfaces.AttainmentService
}

func NewInMemoryQueue(bufferSize, workers int) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		recalcQueue: make(chan interfaces.RecalcJob, bufferSize),
		workers:     workers,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (q *Queue) SetAttainmentService(service interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if svc, ok := service.(serviceInterfaces.AttainmentService); ok {
		q.attainmentService = svc
	} else {
		logger.Error("Invalid service type provided to SetAttainmentService")
	}
}

func (q *Queue) StartWorkers() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return
	}

	if q.attainmentService == nil {
		logger.Warn("Attainment service not set, workers cannot process jobs")
		return
	}

	logger.Info("Starting %d recalculation workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.recalcWorker(i)
	}

	q.started = true
}

func (q *Queue) recalcWorker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.recalcQueue:
			logger.Info("Worker %d recalculating batch %d", id, job.BatchID)
			if err := q.attainmentService.RecalculateForBatch(q.ctx, job.BatchID); err != nil {
				logger.Error("Worker %d failed to recalculate batch %d: %v", id, job.BatchID, err)
			}
		}
	}
}

func (q *Queue) EnqueueBatchRecalc(ctx context.Context, batchID uint) error {
	select {
	case q.recalcQueue <- interfaces.RecalcJob{BatchID: batchID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("recalculation queue is full")
	}
}

func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return
	}

	q.cancel()
	q.wg.Wait()
	q.started = false
	logger.Info("Recalculation workers stopped")
}
