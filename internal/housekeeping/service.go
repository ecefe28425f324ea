// filepath: internal/housekeeping/service.go
package housekeeping

import (
	"context"
	"sync"
	"time"

	"adreel/internal/logging"
	"adreel/internal/models"
	"adreel/internal/services"
)

var _ services.SweeperService = (*Service)(nil)

// Service provides the background worker that sweeps orphaned objects.
type Service struct {
	Deps     Dependencies
	Interval time.Duration
	Grace    time.Duration

	timer    *time.Timer
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	now      func() time.Time
}

// NewService creates a new housekeeping service instance. An interval of zero leaves
// the background worker off; Sweep can still be called on demand.
func NewService(deps Dependencies, interval, grace time.Duration) *Service {
	return &Service{
		Deps:     deps,
		Interval: interval,
		Grace:    grace,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start kicks off the background worker.
func (s *Service) Start() {
	if s.Interval <= 0 {
		logging.Log.Info("Background orphan sweeper is disabled (sweep_interval is 0).")
		return
	}
	if !s.Deps.Objects.Enabled() {
		logging.Log.Warn("Background orphan sweeper not started: object storage is not configured.")
		return
	}

	logging.Log.Infof("Starting background orphan sweeper (every %v, grace %v).", s.Interval, s.Grace)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.timer = time.NewTimer(s.Interval)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.timer.C:
				s.runChecks(ctx)
				s.timer.Reset(s.Interval)
				logging.Log.Debugf("Next orphan sweep scheduled in %v.", s.Interval)
			case <-s.stopCh:
				s.timer.Stop()
				return
			}
		}
	}()
}

// Stop terminates the background worker and waits for an in-flight sweep to return.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		logging.Log.Info("Stopping background orphan sweeper.")
		if s.cancel != nil {
			s.cancel()
		}
		close(s.stopCh)
		if s.done != nil {
			<-s.done
		}
	})
}

// Sweep runs one sweep on demand.
func (s *Service) Sweep(ctx context.Context) (*models.SweepReport, error) {
	return Sweep(ctx, s.Deps, s.Grace, s.now())
}

func (s *Service) runChecks(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if err != nil {
		logging.Log.Errorf("Orphan sweep failed: %v", err)
	} else if report.Failed > 0 {
		logging.Log.Warnf("Orphan sweep left %d objects it could not delete.", report.Failed)
	}
	pruneTokens(ctx, s.Deps.DB)
}
