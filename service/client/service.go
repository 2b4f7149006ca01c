package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/animation"
	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/playback"
	"github.com/itiky/match-presenter/presentation"
	"github.com/itiky/match-presenter/storage"
)

// Config configures the Client.
type Config struct {
	ServerURL string
	// Frames per second driving the scheduler
	TickRate        int
	Animation       animation.Config
	Settings        playback.Settings
	Stall           playback.StallPolicy
	DuplicatePolicy storage.DuplicatePolicy
	// Recording is saved on Stop if set
	RecordDir string
	// Connection retries while the server is not up yet
	NumOfRetries     int
	RetryFallbackDur time.Duration
	MonitorPeriod    time.Duration
}

// Client plays a match received from the server on a presentation.
// Every playback component is owned by the worker goroutine.
type Client struct {
	// Config
	id  uuid.UUID
	cfg Config
	// Playback
	queue        *storage.SnapshotQueue
	orchestrator *animation.Orchestrator
	scheduler    *playback.Scheduler
	recap        *playback.RecapController
	controls     *Controls
	ctx          presentation.Context
	// Match info
	players [2]string
	// Last cursor published by the worker
	cursorMu sync.RWMutex
	cursor   playback.Cursor
	//
	transport *Transport
	monitor   *Monitor
	logger    *zap.Logger
	cmdCh     chan string
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

// String implements the stringer interface.
func (c *Client) String() string {
	return fmt.Sprintf("Client (%s)", c.id)
}

// Submit queues a user command line for the worker.
func (c *Client) Submit(line string) {
	select {
	case c.cmdCh <- line:
	case <-c.doneCh:
	}
}

// Cursor returns the playback position as of the last frame.
func (c *Client) Cursor() playback.Cursor {
	c.cursorMu.RLock()
	defer c.cursorMu.RUnlock()

	return c.cursor
}

// Done is closed once the worker stopped (user exit, connection loss or Stop).
func (c *Client) Done() <-chan struct{} {
	return c.doneCh
}

// Start starts the Client worker.
func (c *Client) Start() {
	if c.stopCh != nil {
		return
	}
	c.stopCh = make(chan struct{})

	c.monitor.Start()
	go c.worker()
}

// Stop stops the Client worker and saves the recording.
func (c *Client) Stop() {
	if c.stopCh == nil {
		return
	}

	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.doneCh

		c.transport.Close()
		c.monitor.Stop()

		if c.cfg.RecordDir == "" {
			return
		}
		rec := storage.NewRecordingFromQueue(c.id, c.players, c.queue)
		filePath, err := rec.SaveToFile(c.cfg.RecordDir)
		if err != nil {
			c.logger.Error("saving recording", zap.Error(err))
			return
		}
		c.logger.Info("recording saved", zap.String("path", filePath), zap.Int("snapshots", rec.Size()))
	})
}

// worker does the actual job.
func (c *Client) worker() {
	defer close(c.doneCh)

	c.logger.Info("start",
		zap.String("server_url", c.cfg.ServerURL),
		zap.Int("tick_rate", c.cfg.TickRate),
		zap.Bool("autopass", c.cfg.Settings.Autopass),
	)

	frameTicker := time.NewTicker(time.Second / time.Duration(c.cfg.TickRate))
	defer frameTicker.Stop()

	inbox := c.transport.Inbox()
	for {
		select {
		case now := <-frameTicker.C:
			// Evaluate the playback state machine
			c.tick(now)
		case msg, ok := <-inbox:
			// Network arrival
			if !ok {
				inbox = nil
				continue
			}
			c.handleMessage(msg, time.Now())
		case err := <-c.transport.Errors():
			// Connection lost: what was received stays playable until Stop
			c.logger.Error("transport", zap.Error(err))
			c.ctx.Notifier.ShowMessage("Connection to the server lost")
		case line := <-c.cmdCh:
			// User command
			if exit := c.handleCommand(line); exit {
				c.logger.Info("exit")
				return
			}
		case <-c.stopCh:
			// Stop the client
			c.logger.Info("stop")
			return
		}
	}
}

func (c *Client) tick(now time.Time) {
	c.scheduler.Tick(now)

	cursor := c.scheduler.Cursor()
	c.cursorMu.Lock()
	c.cursor = cursor
	c.cursorMu.Unlock()
}

// NewClient connects to the server and creates a new Client object.
func NewClient(cfg Config, ctx presentation.Context, logger *zap.Logger) (*Client, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("%s: must be GT 0", "TickRate")
	}
	if cfg.NumOfRetries < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "NumOfRetries")
	}
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("presentation context: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New()
	logger = logger.With(zap.String("client", id.String()))

	c := &Client{
		id:      id,
		cfg:     cfg,
		ctx:     ctx,
		logger:  logger,
		monitor: NewMonitor(cfg.MonitorPeriod, logger.Named("monitor")),
		cmdCh:   make(chan string, 16),
		doneCh:  make(chan struct{}),
		cursor: playback.Cursor{
			CurrentVersion: model.NoVersion,
			MaxVersionSeen: model.NoVersion,
		},
	}

	orchestrator, err := animation.NewOrchestrator(cfg.Animation, ctx, logger.Named("animation"))
	if err != nil {
		return nil, fmt.Errorf("animation.NewOrchestrator: %w", err)
	}
	c.orchestrator = orchestrator
	c.queue = storage.NewSnapshotQueue(cfg.DuplicatePolicy, logger.Named("queue"))

	transport, err := DialTransport(cfg.ServerURL, cfg.NumOfRetries, cfg.RetryFallbackDur, logger.Named("transport"))
	if err != nil {
		return nil, err
	}
	c.transport = transport

	scheduler, err := playback.NewScheduler(
		playback.Config{
			Settings: cfg.Settings,
			Stall:    cfg.Stall,
			Observer: c.monitor,
		},
		c.queue,
		c.orchestrator,
		ctx,
		&monitoredSink{sink: transport, monitor: c.monitor},
		logger.Named("playback"),
	)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("playback.NewScheduler: %w", err)
	}
	c.scheduler = scheduler
	c.recap = playback.NewRecapController(scheduler, logger.Named("recap"))
	c.controls = newControls(c)

	return c, nil
}
