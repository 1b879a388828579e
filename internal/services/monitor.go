package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/soltixdb/greenhouse/internal/analytics/forecast"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/queue"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// AlertEvent is published on the alerts subject for every forecast alert
type AlertEvent struct {
	Sequence uint64    `json:"sequence"`
	RaisedAt time.Time `json:"raised_at"`
	forecast.Alert
}

// Monitor re-runs every analyzer on a fixed interval and keeps the newest snapshot.
//
// Each cycle runs under its own deadline. Starting a cycle cancels one that is
// still pending, and a snapshot is only kept if no later cycle has already
// published one, so results never go backwards.
type Monitor struct {
	logger        *logging.Logger
	analytics     *AnalyticsService
	publisher     queue.Publisher
	alertsSubject string
	interval      time.Duration
	timeout       time.Duration
	limit         int

	mu         sync.Mutex
	seq        uint64
	pendingSeq uint64
	cancel     context.CancelFunc
	latest     *models.SnapshotResponse

	stopLoop context.CancelFunc
	wg       sync.WaitGroup
}

// NewMonitor creates a Monitor. publisher may be nil to skip alert publishing.
func NewMonitor(
	logger *logging.Logger,
	analytics *AnalyticsService,
	publisher queue.Publisher,
	cfg config.MonitorConfig,
	limit int,
	alertsSubject string,
) *Monitor {
	interval := cfg.Interval
	if interval < utils.MinMonitorInterval {
		interval = utils.DefaultMonitorInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = utils.DefaultRequestTimeout
	}

	return &Monitor{
		logger:        logger,
		analytics:     analytics,
		publisher:     publisher,
		alertsSubject: alertsSubject,
		interval:      interval,
		timeout:       timeout,
		limit:         limit,
	}
}

// Start runs a cycle immediately and then on every interval until Stop or ctx ends
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.stopLoop = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(ctx)
	}()

	m.logger.Info("Monitor started", "interval", m.interval, "timeout", m.timeout, "limit", m.limit)
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Trigger(ctx)
		}
	}
}

// Stop ends the loop, cancels a pending cycle and waits for everything to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopLoop != nil {
		m.stopLoop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("Monitor stopped")
}

// Trigger starts a cycle in the background and returns its sequence number
func (m *Monitor) Trigger(ctx context.Context) uint64 {
	cycleCtx, seq := m.begin(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_, _ = m.run(cycleCtx, seq)
	}()
	return seq
}

// RunOnce runs a cycle and waits for its result
func (m *Monitor) RunOnce(ctx context.Context) (*models.SnapshotResponse, error) {
	cycleCtx, seq := m.begin(ctx)

	m.wg.Add(1)
	defer m.wg.Done()
	return m.run(cycleCtx, seq)
}

// Latest returns the newest published snapshot
func (m *Monitor) Latest() (*models.SnapshotResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.latest != nil
}

// begin cancels the pending cycle and opens a new one
func (m *Monitor) begin(parent context.Context) (context.Context, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}

	m.seq++
	ctx, cancel := context.WithTimeout(logging.WithCycle(parent, m.seq), m.timeout)
	m.pendingSeq = m.seq
	m.cancel = cancel
	return ctx, m.seq
}

// finish releases the cycle context if it is still the pending one
func (m *Monitor) finish(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pendingSeq == seq && m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Monitor) run(ctx context.Context, seq uint64) (*models.SnapshotResponse, error) {
	defer m.finish(seq)
	start := time.Now()
	log := m.logger.WithContext(ctx)

	snapshot, err := m.analytics.Snapshot(ctx, m.limit)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		result := metrics.ResultError
		if errors.Is(ctx.Err(), context.Canceled) {
			result = metrics.ResultSkipped
			log.Debug("Monitor cycle superseded")
		} else {
			log.Warn("Monitor cycle failed", "error", err)
		}
		metrics.ObserveMonitorCycle(result, time.Since(start))
		return nil, err
	}

	snapshot.Sequence = seq
	if !m.commit(snapshot) {
		metrics.ObserveMonitorCycle(metrics.ResultSkipped, time.Since(start))
		log.Debug("Discarding stale monitor snapshot")
		return snapshot, nil
	}

	m.publishAlerts(ctx, snapshot)
	metrics.ObserveMonitorCycle(metrics.ResultSuccess, time.Since(start))
	log.Info("Monitor cycle completed",
		"readings", snapshot.Forecast.Batch.Count,
		"source", snapshot.Forecast.Batch.Source,
		"alerts", len(snapshot.Forecast.Alerts),
		"comfort_score", snapshot.Stress.Summary.ComfortScorePct,
		"duration", time.Since(start),
	)
	return snapshot, nil
}

// commit stores snapshot unless a later cycle already published
func (m *Monitor) commit(snapshot *models.SnapshotResponse) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latest != nil && m.latest.Sequence >= snapshot.Sequence {
		return false
	}
	m.latest = snapshot
	metrics.SetSnapshotSequence(snapshot.Sequence)
	return true
}

func (m *Monitor) publishAlerts(ctx context.Context, snapshot *models.SnapshotResponse) {
	for _, alert := range snapshot.Forecast.Alerts {
		metrics.IncAlert(string(alert.Type), alert.Label)

		if m.publisher == nil || m.alertsSubject == "" {
			continue
		}
		event := AlertEvent{
			Sequence: snapshot.Sequence,
			RaisedAt: snapshot.CompletedAt,
			Alert:    alert,
		}
		if err := queue.PublishJSON(ctx, m.publisher, m.alertsSubject, event); err != nil {
			m.logger.WithContext(ctx).Warn("Failed to publish alert",
				"subject", m.alertsSubject,
				"sensor", alert.Sensor,
				"error", err,
			)
		}
	}
}
