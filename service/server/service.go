package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/storage"
)

const (
	readLimit    = 1 << 20 // 1MB
	writeTimeout = 10 * time.Second
)

// Config configures the MatchFeed.
type Config struct {
	// Delay between two sent messages
	SendPeriod time.Duration
	// Delivery order is permuted within consecutive windows of this size (0, 1: in order)
	ShuffleWindow int
	// Resend the first snapshot of every window once the window is sent
	Redeliver bool
	// Deterministic delivery order if not 0
	Seed int64
}

// MatchFeed serves a recorded match to websocket clients, one independent session per connection.
type MatchFeed struct {
	// Config
	cfg       Config
	recording *storage.Recording
	// State
	sessions sync.WaitGroup
	//
	upgrader websocket.Upgrader
	monitor  *Monitor
	logger   *zap.Logger
	stopCh   chan struct{}
}

// ServeHTTP implements http.Handler interface.
func (f *MatchFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("upgrade", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	f.sessions.Add(1)
	defer f.sessions.Done()

	s := &session{
		id:     uuid.New(),
		feed:   f,
		conn:   conn,
		doneCh: make(chan struct{}),
	}
	s.logger = f.logger.With(zap.String("session", s.id.String()))
	s.run()
}

// Start starts the service worker.
func (f *MatchFeed) Start() {
	if f.stopCh != nil {
		return
	}
	f.stopCh = make(chan struct{})

	f.monitor.Start()
	f.logger.Info("MatchFeed: start",
		zap.String("match", f.recording.MatchId.String()),
		zap.Int("snapshots", f.recording.Size()),
	)
}

// Stop stops the service and waits for every session to close.
func (f *MatchFeed) Stop() {
	if f.stopCh == nil {
		return
	}

	close(f.stopCh)
	f.sessions.Wait()
	f.monitor.Stop()
	f.logger.Info("MatchFeed: stop")
}

func (f *MatchFeed) stopped() <-chan struct{} {
	if f.stopCh == nil {
		// Never closed: the feed runs without Start in tests
		return nil
	}

	return f.stopCh
}

// DeliveryOrder returns the recording indexes in sending order.
// Every index is delivered at least once and never leaves its window.
func DeliveryOrder(n, window int, redeliver bool, rng *rand.Rand) []int {
	if window < 1 {
		window = 1
	}

	order := make([]int, 0, n)
	for start := 0; start < n; start += window {
		end := start + window
		if end > n {
			end = n
		}

		chunk := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			chunk = append(chunk, i)
		}
		if window > 1 {
			rng.Shuffle(len(chunk), func(i, j int) {
				chunk[i], chunk[j] = chunk[j], chunk[i]
			})
		}

		order = append(order, chunk...)
		if redeliver {
			order = append(order, start)
		}
	}

	return order
}

// NewMatchFeed creates a new MatchFeed object.
func NewMatchFeed(cfg Config, recording *storage.Recording, logger *zap.Logger) (*MatchFeed, error) {
	if recording == nil {
		return nil, fmt.Errorf("%s: nil", "recording")
	}
	if cfg.SendPeriod < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "SendPeriod")
	}
	if cfg.ShuffleWindow < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "ShuffleWindow")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchFeed{
		cfg:       cfg,
		recording: recording,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		monitor: NewMonitor(5*time.Second, logger.Named("monitor")),
		logger:  logger,
	}, nil
}

// matchStart builds the greeting for a recording.
func matchStart(r *storage.Recording) model.MatchStart {
	return model.MatchStart{
		Name1: r.Players[model.Self],
		Name2: r.Players[model.Opponent],
	}
}
