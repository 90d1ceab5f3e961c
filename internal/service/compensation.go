package service

import (
	"context"
	"log"
	"time"
)

// CompensationWorker periodically applies deferred points compensations.
type CompensationWorker struct {
	ledger    *LedgerService
	interval  time.Duration
	batchSize int
}

// NewCompensationWorker creates a new CompensationWorker.
func NewCompensationWorker(ledger *LedgerService, interval time.Duration, batchSize int) *CompensationWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &CompensationWorker{
		ledger:    ledger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run processes pending compensations every interval until ctx is done.
func (w *CompensationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes a single batch.
func (w *CompensationWorker) RunOnce(ctx context.Context) {
	applied, err := w.ledger.ProcessPending(ctx, w.batchSize)
	if err != nil {
		log.Printf("compensation worker: %v", err)
	}
	if applied > 0 {
		log.Printf("compensation worker: applied %d deferred adjustments", applied)
	}
}
