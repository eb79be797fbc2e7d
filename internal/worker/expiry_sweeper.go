package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// SweepFacade exposes the sweep entry point driven by the ticker.
type SweepFacade interface {
	RunExpirySweep(ctx context.Context) (model.SweepResult, error)
}

// ExpirySweeper runs the expiry sweep on a fixed interval from a single
// goroutine, so runs inside one process never overlap.
type ExpirySweeper struct {
	facade   SweepFacade
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper. Non-positive intervals default to one minute.
func NewExpirySweeper(facade SweepFacade, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		facade:   facade,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the ticker loop. The first sweep runs immediately. Calling
// Start on a running sweeper does nothing.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop cancels the loop and waits for an in-progress sweep to return.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	result, err := s.facade.RunExpirySweep(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled expiry sweep failed", slog.String("error", err.Error()))
		return
	}
	if result.CancelledCount > 0 {
		s.logger.Info("scheduled expiry sweep",
			slog.Int("cancelled_count", result.CancelledCount),
			slog.Int("notified_count", result.NotifiedCount),
		)
	}
}
