// Package supervisor assembles the Flotilla fleet from configuration and
// drives it through the lifecycle orchestrator.
//
// The supervisor owns the component set: built-in servers (metrics, status
// API), the config watcher, and one component per managed child process.
// It layers state tracking on top of the lifecycle library so the status
// API and Prometheus metrics can observe the fleet without the library
// knowing about either.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/flotilla/internal/logger"
	"github.com/marmos91/flotilla/internal/telemetry"
	"github.com/marmos91/flotilla/pkg/api"
	"github.com/marmos91/flotilla/pkg/api/handlers"
	"github.com/marmos91/flotilla/pkg/config"
	"github.com/marmos91/flotilla/pkg/lifecycle"
	"github.com/marmos91/flotilla/pkg/metrics"
)

// Built-in component names. Config validation rejects processes that reuse
// them.
const (
	componentMetrics = "metrics"
	componentAPI     = "api"
	componentWatcher = "watcher"
)

// Supervisor wires the configured fleet into a lifecycle orchestrator and
// exposes Run/Shutdown plus the state snapshot the status API serves.
type Supervisor struct {
	cfg       *config.Config
	runID     string
	orch      *lifecycle.Orchestrator
	trackers  []*tracker
	fleet     *metrics.FleetMetrics
	startedAt time.Time

	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// New builds a supervisor from configuration. Components are constructed
// and registered in fixed start order: metrics server, status API server,
// config watcher, then each configured process in declaration order.
func New(cfg *config.Config) (*Supervisor, error) {
	s := &Supervisor{
		cfg:   cfg,
		runID: uuid.NewString(),
		orch:  lifecycle.New(),
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		s.fleet = metrics.NewFleetMetrics()
		s.fleet.SetRunInfo(s.runID)

		if err := s.add(componentMetrics, KindServer, metrics.NewServer(cfg.Metrics.Port)); err != nil {
			return nil, err
		}
	}

	if cfg.API.IsEnabled() {
		if err := s.add(componentAPI, KindServer, api.NewServer(cfg.API, s)); err != nil {
			return nil, err
		}
	}

	if cfg.Watch.Enabled {
		w := NewWatcher(cfg.Watch.Paths, cfg.Watch.Debounce, s.requestStop)
		if err := s.add(componentWatcher, KindWatcher, w); err != nil {
			return nil, err
		}
	}

	for _, pc := range cfg.Processes {
		if err := s.add(pc.Name, KindProcess, NewProcess(pc)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// add wraps a component in a tracker and registers it with the
// orchestrator.
func (s *Supervisor) add(name, kind string, c lifecycle.Component) error {
	t := newTracker(name, kind, len(s.trackers), c, s.fleet)
	if err := s.orch.Add(name, t); err != nil {
		return err
	}
	s.trackers = append(s.trackers, t)
	return nil
}

// RunID returns the unique identifier of this supervisor run.
func (s *Supervisor) RunID() string {
	return s.runID
}

// OnRelease registers a shared-resource release hook with the orchestrator;
// it runs only after every component has stopped.
func (s *Supervisor) OnRelease(name string, fn lifecycle.ReleaseFunc) error {
	return s.orch.OnRelease(name, fn)
}

// Run starts the fleet and blocks until every component has returned. The
// first component failure, a termination signal, a watched-file change, or
// cancellation of ctx all initiate a graceful fleet stop.
func (s *Supervisor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancelRun = cancel
	s.startedAt = time.Now()
	s.mu.Unlock()

	spanCtx, span := telemetry.StartFleetSpan(runCtx, s.runID, len(s.trackers))
	defer span.End()

	logger.Info("Fleet starting",
		logger.RunID(s.runID),
		"components", len(s.trackers),
	)

	err := s.orch.Run(spanCtx)
	if err != nil {
		telemetry.RecordError(spanCtx, err)
	}
	return err
}

// Shutdown stops the fleet in reverse start order under the configured
// shutdown budget.
func (s *Supervisor) Shutdown() error {
	timeout := s.cfg.ShutdownTimeout

	ctx, span := telemetry.StartShutdownSpan(context.Background(), s.runID, timeout.Milliseconds())
	defer span.End()

	err := s.orch.Shutdown(timeout)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

// Status returns a point-in-time snapshot of the fleet for the status API.
// It implements handlers.StatusSource.
func (s *Supervisor) Status() handlers.FleetStatus {
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	status := handlers.FleetStatus{
		RunID:     s.runID,
		StartedAt: startedAt,
		Processes: make([]handlers.ProcessStatus, 0, len(s.trackers)),
	}
	if !startedAt.IsZero() {
		status.Uptime = time.Since(startedAt).Truncate(time.Second).String()
	}

	for _, t := range s.trackers {
		status.Processes = append(status.Processes, t.status())
	}
	return status
}

// requestStop initiates a graceful fleet stop. Used by the config watcher.
func (s *Supervisor) requestStop() {
	s.mu.Lock()
	cancel := s.cancelRun
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
