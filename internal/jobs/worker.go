package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker represents a background job worker
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	logger       *zap.Logger
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		logger:       log.With(zap.String("worker", name)),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.logger.Info("Worker started", zap.Duration("poll_interval", w.pollInterval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.logger.Info("Worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				w.logger.Error("Error processing jobs", zap.Error(err))
			}
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}
	<-w.doneChan
	w.logger.Info("Worker shutdown complete")
}
