package server

import (
	"sync"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

// Monitor keeps MatchFeed stats.
type Monitor struct {
	sync.Mutex
	logger   *zap.Logger
	period   time.Duration
	sessions int
	sent     int
	commands map[model.MessageType]int
	// Session lifetime [s]
	sessionDur *movingaverage.MovingAverage
	opened     []time.Time
	stopCh     chan struct{}
}

// SessionOpened increments the active sessions metric.
func (m *Monitor) SessionOpened() {
	m.Lock()
	defer m.Unlock()

	m.sessions++
	m.opened = append(m.opened, time.Now())
}

// SessionClosed decrements the active sessions metric.
func (m *Monitor) SessionClosed() {
	m.Lock()
	defer m.Unlock()

	m.sessions--
	if len(m.opened) > 0 {
		m.sessionDur.Add(time.Since(m.opened[0]).Seconds())
		m.opened = m.opened[1:]
	}
}

// SnapshotSent increments the sent snapshots metric.
func (m *Monitor) SnapshotSent() {
	m.Lock()
	defer m.Unlock()

	m.sent++
}

// CommandReceived counts a client command by type.
func (m *Monitor) CommandReceived(msgType model.MessageType) {
	m.Lock()
	defer m.Unlock()

	m.commands[msgType]++
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

			fields := []zap.Field{
				zap.Int("sessions", m.sessions),
				zap.Float64("snapshots_per_sec", float64(m.sent)/(float64(m.period)/float64(time.Second))),
				zap.Float64("session_dur_s", m.sessionDur.Avg()),
			}
			for msgType, count := range m.commands {
				fields = append(fields, zap.Int("cmd_"+string(msgType), count))
			}
			m.logger.Info("monitor", fields...)
			m.sent = 0
			m.commands = make(map[model.MessageType]int)

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
		logger:     logger,
		period:     period,
		commands:   make(map[model.MessageType]int),
		sessionDur: movingaverage.New(5),
	}
}
