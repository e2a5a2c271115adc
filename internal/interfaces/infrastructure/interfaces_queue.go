package infrastructure

import "context"

// RecalcJob asks the workers to rebuild the attainment cache for one batch.
type RecalcJob struct {
	BatchID uint
}

// QueueService carries administrative batch-repair recompute jobs. Upload
// triggered recomputes run synchronously on the request path and never go
// through the queue.
type QueueService interface {
	EnqueueBatchRecalc(ctx context.Context, batchID uint) error
	SetAttainmentService(service interface{})
	StartWorkers()
	Stop()
}
