package service

import (
	"context"
	"sync"
	"time"

	"github.com/adjudex/tribunal/internal/domain"
	"go.uber.org/zap"
)

const defaultPrunerInterval = 1 * time.Hour

// PrunerService deletes archived verdicts past the retention window on a
// periodic schedule. A retention of zero disables pruning.
type PrunerService struct {
	verdictStore domain.VerdictStore
	retention    time.Duration
	logger       *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewPrunerService(vs domain.VerdictStore, retention time.Duration, logger *zap.Logger) *PrunerService {
	return &PrunerService{
		verdictStore: vs,
		retention:    retention,
		logger:       logger,
		interval:     defaultPrunerInterval,
		stopCh:       make(chan struct{}),
	}
}

func (s *PrunerService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the pruner in a background goroutine.
func (s *PrunerService) Start() {
	if s.retention <= 0 {
		s.logger.Info("verdict pruner disabled, no retention configured")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("verdict pruner started",
			zap.Duration("interval", s.interval),
			zap.Duration("retention", s.retention))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("verdict pruner stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the pruner.
func (s *PrunerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *PrunerService) run(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.verdictStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune archived verdicts", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("pruned archived verdicts",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff))
	}
}
