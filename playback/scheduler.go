// Package playback decides when each received snapshot becomes visible.
//
// The Scheduler is driven by the host's frame loop: every Tick evaluates the state machine once,
// runs to completion and never blocks. Network arrivals go to the SnapshotQueue and user commands
// mutate the scheduler synchronously, both taking effect on the next Tick.
package playback

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itiky/match-presenter/animation"
	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/presentation"
	"github.com/itiky/match-presenter/storage"
	"github.com/itiky/match-presenter/zonediff"
)

// State is the scheduler state.
type State int

const (
	// StateWaiting: no animation in flight, looking for the next version
	StateWaiting State = iota
	// StateAnimating: a display cycle's batch is in flight
	StateAnimating
	// StatePaused: explicitly blocked
	StatePaused
	// StateRecapActive: recap snapshots are being shown
	StateRecapActive
)

// String implements the stringer interface.
func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateAnimating:
		return "ANIMATING"
	case StatePaused:
		return "PAUSED"
	case StateRecapActive:
		return "RECAP_ACTIVE"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

type (
	// CommandSink delivers outbound commands to the transport.
	CommandSink interface {
		Send(msg model.Message) error
	}

	// Observer receives display cycle events (stats).
	Observer interface {
		VersionDisplayed(version model.Version, at time.Time)
		CycleCompleted(version model.Version, dur time.Duration)
	}

	// Settings are the player's settings relevant to playback.
	Settings struct {
		Autopass bool
		Tutorial bool
	}

	// Config configures the Scheduler.
	Config struct {
		Settings Settings
		Stall    StallPolicy
		Observer Observer
	}

	// Cursor is the playback position.
	Cursor struct {
		// Last fully displayed version
		CurrentVersion model.Version
		MaxVersionSeen model.Version
		Paused         bool
	}

	// Scheduler is the top-level playback state machine. It is the single writer of the cursor and the pause state.
	Scheduler struct {
		cfg          Config
		queue        *storage.SnapshotQueue
		orchestrator *animation.Orchestrator
		ctx          presentation.Context
		commands     CommandSink
		logger       *zap.Logger
		// Cursor
		currentVersion model.Version
		pauseReasons   map[string]struct{}
		// Display cycle: the last snapshot handed to the presentation and its batch
		shown      *model.Snapshot
		batch      *animation.Batch
		cycleStart time.Time
		// Version autopass was last sent for
		autopassed model.Version
		// Gap watchdog
		gapSince    time.Time
		gapVersion  model.Version
		gapReported bool
	}
)

// Tick evaluates the state machine once.
func (s *Scheduler) Tick(now time.Time) State {
	s.orchestrator.Advance(now)

	if s.batch != nil && s.batch.Finished() {
		s.completeCycle(now)
	}

	if s.Paused() {
		return StatePaused
	}
	if s.batch != nil {
		return s.State()
	}

	next, found := s.queue.Get(s.currentVersion + 1)
	if !found {
		s.checkStall(now)
		return s.State()
	}

	s.startCycle(now, next)

	return s.State()
}

// State returns the current state without evaluating transitions.
func (s *Scheduler) State() State {
	switch {
	case s.Paused():
		return StatePaused
	case s.shown != nil && s.shown.IsRecap:
		return StateRecapActive
	case s.batch != nil:
		return StateAnimating
	}

	return StateWaiting
}

// Cursor returns the playback position.
func (s *Scheduler) Cursor() Cursor {
	return Cursor{
		CurrentVersion: s.currentVersion,
		MaxVersionSeen: s.queue.MaxVersionSeen(),
		Paused:         s.Paused(),
	}
}

// CurrentVersion returns the last fully displayed version.
func (s *Scheduler) CurrentVersion() model.Version {
	return s.currentVersion
}

// Shown returns the snapshot last handed to the presentation.
func (s *Scheduler) Shown() *model.Snapshot {
	return s.shown
}

// Pause blocks new states from being shown until every pause reason is released.
func (s *Scheduler) Pause(reason string) {
	if _, found := s.pauseReasons[reason]; found {
		return
	}
	s.pauseReasons[reason] = struct{}{}

	s.logger.Debug("playback paused", zap.String("reason", reason))
}

// Resume releases a pause reason.
func (s *Scheduler) Resume(reason string) {
	if _, found := s.pauseReasons[reason]; !found {
		return
	}
	delete(s.pauseReasons, reason)

	s.logger.Debug("playback resumed", zap.String("reason", reason), zap.Bool("paused", s.Paused()))
}

// Paused reports whether any pause reason is held.
func (s *Scheduler) Paused() bool {
	return len(s.pauseReasons) > 0
}

// PassTurn sends a pass for the current version.
func (s *Scheduler) PassTurn() error {
	return s.send(model.PassTurn{VersionNo: s.currentVersion})
}

// PlayCard sends a play for the card at the hand index with the current version.
func (s *Scheduler) PlayCard(cardNum int) error {
	if cardNum < 0 {
		return fmt.Errorf("%s: must be GTE 0", "cardNum")
	}

	return s.send(model.PlayCard{CardNum: cardNum, VersionNo: s.currentVersion})
}

// Mulligan sends the mulligan selection.
func (s *Scheduler) Mulligan(selection [3]bool) error {
	return s.send(model.Mulligan{Mulligan: selection})
}

// Emote sends an emote.
func (s *Scheduler) Emote() error {
	return s.send(model.Emote{})
}

// ExitMatch sends the exit command. Always available.
func (s *Scheduler) ExitMatch() error {
	return s.send(model.ExitMatch{})
}

func (s *Scheduler) send(msg model.Message) error {
	if err := s.commands.Send(msg); err != nil {
		return fmt.Errorf("sending %s: %w", msg.MessageType(), err)
	}

	return nil
}

// startCycle hands the snapshot to the presentation and starts its animation batch.
func (s *Scheduler) startCycle(now time.Time, next *model.Snapshot) {
	prev, _ := s.queue.Get(s.currentVersion)
	ops := zonediff.Diff(prev, next)

	s.ctx.Display.DisplaySnapshot(next)
	s.queue.MarkDisplayed(next.VersionNo)
	if next.SoundCue != "" {
		s.ctx.Sounds.PlaySound(next.SoundCue)
	}

	s.shown = next
	s.cycleStart = now
	s.batch = s.orchestrator.Play(now, prev, next, ops)
	s.resetStall()

	if s.cfg.Observer != nil {
		s.cfg.Observer.VersionDisplayed(next.VersionNo, now)
	}

	s.logger.Info("displaying version",
		zap.Int("version", int(next.VersionNo)),
		zap.Int("ops", len(ops)),
		zap.Bool("recap", next.IsRecap),
	)
}

// completeCycle advances the cursor once the batch finished and evaluates autopass.
func (s *Scheduler) completeCycle(now time.Time) {
	s.batch = nil
	s.currentVersion = s.shown.VersionNo

	if s.cfg.Observer != nil {
		s.cfg.Observer.CycleCompleted(s.currentVersion, now.Sub(s.cycleStart))
	}

	// A version replayed by a recap never passes twice
	if s.currentVersion <= s.autopassed {
		return
	}
	if !ShouldAutoPass(s.shown, s.cfg.Settings.Autopass, s.cfg.Settings.Tutorial) {
		return
	}

	s.autopassed = s.currentVersion
	if err := s.PassTurn(); err != nil {
		s.logger.Error("autopass failed", zap.Int("version", int(s.currentVersion)), zap.Error(err))
		return
	}

	s.logger.Info("autopass sent", zap.Int("version", int(s.currentVersion)))
}

// abandonCycle forces the in-flight batch to its terminal state without advancing the cursor.
func (s *Scheduler) abandonCycle() {
	s.orchestrator.CompleteAll()
	s.batch = nil
}

// checkStall applies the stall policy while the next version is missing and later ones are buffered.
func (s *Scheduler) checkStall(now time.Time) {
	if !s.cfg.Stall.enabled() {
		return
	}

	missing := s.currentVersion + 1
	lowest, found := s.queue.LowestAbove(missing)
	if !found {
		s.resetStall()
		return
	}

	if s.gapSince.IsZero() || s.gapVersion != missing {
		s.gapSince, s.gapVersion, s.gapReported = now, missing, false
		return
	}
	if now.Sub(s.gapSince) < s.cfg.Stall.Timeout {
		return
	}

	switch s.cfg.Stall.Action {
	case StallNotify:
		if s.gapReported {
			return
		}
		s.gapReported = true

		s.logger.Warn("playback stalled: version missing",
			zap.Int("missing", int(missing)),
			zap.Int("buffered_from", int(lowest)),
		)
		s.ctx.Notifier.ShowMessage(fmt.Sprintf("Waiting for the server (state %d)...", missing))
	case StallJump:
		s.logger.Warn("playback stalled: jumping over missing versions",
			zap.Int("missing_from", int(missing)),
			zap.Int("missing_to", int(lowest-1)),
		)
		s.currentVersion = lowest - 1
		s.resetStall()
	}
}

func (s *Scheduler) resetStall() {
	s.gapSince, s.gapVersion, s.gapReported = time.Time{}, model.NoVersion, false
}

// NewScheduler creates a new Scheduler object.
func NewScheduler(cfg Config, queue *storage.SnapshotQueue, orchestrator *animation.Orchestrator, ctx presentation.Context, commands CommandSink, logger *zap.Logger) (*Scheduler, error) {
	if queue == nil {
		return nil, fmt.Errorf("%s: nil", "queue")
	}
	if orchestrator == nil {
		return nil, fmt.Errorf("%s: nil", "orchestrator")
	}
	if commands == nil {
		return nil, fmt.Errorf("%s: nil", "commands")
	}
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("presentation context: %w", err)
	}
	if cfg.Stall.Timeout < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "Stall.Timeout")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cfg:            cfg,
		queue:          queue,
		orchestrator:   orchestrator,
		ctx:            ctx,
		commands:       commands,
		logger:         logger,
		currentVersion: model.NoVersion,
		pauseReasons:   make(map[string]struct{}),
		autopassed:     model.NoVersion,
		gapVersion:     model.NoVersion,
	}, nil
}
