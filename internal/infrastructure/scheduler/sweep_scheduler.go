package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appparking "github.com/parklot/backend/internal/application/parking"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when an operation requires a running scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// SweepScheduler runs the booking reconciler on a fixed interval
type SweepScheduler struct {
	reconciler *appparking.ReconcilerService
	logger     *zap.Logger
	config     SweepSchedulerConfig
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
}

// SweepSchedulerConfig holds configuration for the sweep scheduler
type SweepSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is the time between sweeps
	Interval time.Duration

	// SweepTimeout is the maximum time for a single sweep
	SweepTimeout time.Duration
}

// DefaultSweepSchedulerConfig returns default configuration
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Enabled:      true,
		Interval:     time.Minute,
		SweepTimeout: 30 * time.Second,
	}
}

// NewSweepScheduler creates a new sweep scheduler
func NewSweepScheduler(
	reconciler *appparking.ReconcilerService,
	logger *zap.Logger,
	config SweepSchedulerConfig,
) *SweepScheduler {
	return &SweepScheduler{
		reconciler: reconciler,
		logger:     logger,
		config:     config,
	}
}

// Start starts the sweep loop
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes sweeps on the configured interval until the context ends
func (s *SweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sweep loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

// executeSweep runs a single reconciler pass with a timeout
func (s *SweepScheduler) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	stats, err := s.reconciler.Sweep(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Booking sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if stats.Promoted > 0 || stats.Completed > 0 || stats.Failed > 0 {
		s.logger.Info("Booking sweep completed",
			zap.Duration("duration", duration),
			zap.Int("promoted", stats.Promoted),
			zap.Int("completed", stats.Completed),
			zap.Int("failed", stats.Failed),
		)
	}
}

// TriggerImmediateSweep triggers a sweep outside the regular interval
func (s *SweepScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate booking sweep")

	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
