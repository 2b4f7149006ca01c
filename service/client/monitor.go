package client

import (
	"sync"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

// Monitor keeps Client playback stats.
type Monitor struct {
	sync.Mutex
	logger *zap.Logger
	period time.Duration
	// Arrival time of versions not displayed yet
	arrivals map[model.Version]time.Time
	// Arrival -> display [ms]
	displayLatency *movingaverage.MovingAverage
	// Display cycle duration [ms]
	cycleDur  *movingaverage.MovingAverage
	received  int
	displayed int
	commands  int
	stopCh    chan struct{}
}

// SnapshotReceived registers a snapshot arrival.
func (m *Monitor) SnapshotReceived(version model.Version, at time.Time) {
	m.Lock()
	defer m.Unlock()

	m.received++
	if _, found := m.arrivals[version]; !found {
		m.arrivals[version] = at
	}
}

// CommandSent registers an outbound command.
func (m *Monitor) CommandSent() {
	m.Lock()
	defer m.Unlock()

	m.commands++
}

// VersionDisplayed implements playback.Observer interface.
func (m *Monitor) VersionDisplayed(version model.Version, at time.Time) {
	m.Lock()
	defer m.Unlock()

	m.displayed++
	if arrivedAt, found := m.arrivals[version]; found {
		m.displayLatency.Add(float64(at.Sub(arrivedAt)/time.Microsecond) / 1000.0)
		delete(m.arrivals, version)
	}
}

// CycleCompleted implements playback.Observer interface.
func (m *Monitor) CycleCompleted(version model.Version, dur time.Duration) {
	m.Lock()
	defer m.Unlock()

	m.cycleDur.Add(float64(dur/time.Microsecond) / 1000.0)
}

// Start starts the Monitor worker.
func (m *Monitor) Start() {
	if m.stopCh != nil {
		return
	}

	m.stopCh = make(chan struct{})
	go m.worker()
}

// Stop stops the Monitor worker.
func (m *Monitor) Stop() {
	if m.stopCh == nil {
		return
	}

	close(m.stopCh)
}

// worker does the actual job.
func (m *Monitor) worker() {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			// Stop the monitor
			return
		case <-ticker.C:
			// Print the report
			m.Lock()

			perSec := float64(m.period) / float64(time.Second)
			m.logger.Info("monitor",
				zap.Float64("received_per_sec", float64(m.received)/perSec),
				zap.Float64("displayed_per_sec", float64(m.displayed)/perSec),
				zap.Int("commands", m.commands),
				zap.Int("buffered_ahead", len(m.arrivals)),
				zap.Float64("display_latency_ms", m.displayLatency.Avg()),
				zap.Float64("cycle_dur_ms", m.cycleDur.Avg()),
			)
			m.received = 0
			m.displayed = 0
			m.commands = 0

			m.Unlock()
		}
	}
}

// NewMonitor creates a new Monitor object.
func NewMonitor(period time.Duration, logger *zap.Logger) *Monitor {
	if period <= 0 {
		period = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		logger:         logger,
		period:         period,
		arrivals:       make(map[model.Version]time.Time),
		displayLatency: movingaverage.New(10),
		cycleDur:       movingaverage.New(10),
	}
}
