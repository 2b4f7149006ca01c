// Package animation schedules AnimationOps as timed visual operations.
//
// Time never advances on its own: the host's frame loop calls Advance with the current time, so a batch
// is fully deterministic for a given sequence of timestamps.
package animation

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/presentation"
)

const (
	emphasisScale = 1.5
	decoyOffset   = 12.0
)

type (
	// Config keeps animation timings.
	Config struct {
		// Single op duration (D)
		Duration time.Duration
		// Delay between two consecutive op starts
		StaggerUnit time.Duration
	}

	// Orchestrator plays AnimationOp batches using the presentation collaborators.
	Orchestrator struct {
		cfg     Config
		ctx     presentation.Context
		logger  *zap.Logger
		batches []*Batch
	}

	// Batch is a display cycle's animations. Done is closed once every op reached its terminal state.
	Batch struct {
		start  time.Time
		tweens []*tween
		done   chan struct{}
	}
)

// DefaultConfig returns the default animation timings.
func DefaultConfig() Config {
	return Config{
		Duration:    400 * time.Millisecond,
		StaggerUnit: 150 * time.Millisecond,
	}
}

// StaggerDelay returns the start delay of the i-th op of a batch.
func (c Config) StaggerDelay(i int) time.Duration {
	return time.Duration(i) * c.StaggerUnit
}

// Play schedules ops as a new batch starting at now.
// prev resolves source positions (next is used when prev is nil), next resolves destination positions.
func (o *Orchestrator) Play(now time.Time, prev, next *model.Snapshot, ops []model.AnimationOp) *Batch {
	if prev == nil {
		prev = next
	}

	b := &Batch{
		start:  now,
		tweens: make([]*tween, 0, len(ops)),
		done:   make(chan struct{}),
	}

	for i, op := range ops {
		t := &tween{
			op:       op,
			sound:    resolveSound(op),
			delay:    o.cfg.StaggerDelay(i),
			duration: o.cfg.Duration,
		}
		t.fromX, t.fromY = o.ctx.Layout.Position(op.Owner, op.FromZone, op.FromIndex, prev)
		t.toX, t.toY = o.ctx.Layout.Position(op.Owner, op.ToZone, op.ToIndex, next)

		// The persistent card stays hidden until its proxy lands; a transformed card's new art is shown right away
		switch op.Kind {
		case model.OpShuffle, model.OpEmphasis:
		default:
			if obj, found := o.ctx.Objects.PermanentObjectFor(op.Owner, op.ToZone, op.ToIndex); found {
				obj.SetVisible(op.Kind == model.OpTransform)
			}
		}

		b.tweens = append(b.tweens, t)
	}

	o.logger.Debug("animation batch scheduled",
		zap.Int("version", int(next.VersionNo)),
		zap.Int("ops", len(ops)),
		zap.Duration("total", b.Duration()),
	)

	if len(b.tweens) == 0 {
		close(b.done)
		return b
	}
	o.batches = append(o.batches, b)

	return b
}

// Advance progresses every in-flight batch to now.
func (o *Orchestrator) Advance(now time.Time) {
	active := o.batches[:0]
	for _, b := range o.batches {
		b.advance(o, now)
		if !b.Finished() {
			active = append(active, b)
		}
	}
	o.batches = active
}

// CompleteAll forces every in-flight op to its terminal state: persistent objects become visible,
// proxies are destroyed. Ops not yet started are completed silently.
func (o *Orchestrator) CompleteAll() {
	for _, b := range o.batches {
		b.complete(o)
	}
	o.batches = nil
}

// InFlight reports whether any batch is still animating.
func (o *Orchestrator) InFlight() bool {
	return len(o.batches) > 0
}

// Done returns a channel closed when the batch completes.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Finished reports whether the batch completed.
func (b *Batch) Finished() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Len returns the number of scheduled ops.
func (b *Batch) Len() int {
	return len(b.tweens)
}

// Delays returns the scheduled start delay of every op in batch order.
func (b *Batch) Delays() []time.Duration {
	delays := make([]time.Duration, 0, len(b.tweens))
	for _, t := range b.tweens {
		delays = append(delays, t.delay)
	}

	return delays
}

// Sounds returns the resolved sound of every op in batch order.
func (b *Batch) Sounds() []string {
	sounds := make([]string, 0, len(b.tweens))
	for _, t := range b.tweens {
		sounds = append(sounds, t.sound)
	}

	return sounds
}

// Duration returns the time from the batch start to the slowest op completion.
func (b *Batch) Duration() time.Duration {
	var total time.Duration
	for _, t := range b.tweens {
		if end := t.delay + t.duration; end > total {
			total = end
		}
	}

	return total
}

func (b *Batch) advance(o *Orchestrator, now time.Time) {
	if b.Finished() {
		return
	}

	pending := 0
	for _, t := range b.tweens {
		if t.state == tweenDone {
			continue
		}

		elapsed := now.Sub(b.start) - t.delay
		if elapsed < 0 {
			pending++
			continue
		}
		if t.state == tweenPending {
			t.start(o)
		}

		progress := 1.0
		if t.duration > 0 {
			progress = float64(elapsed) / float64(t.duration)
		}
		if progress >= 1 {
			t.render(1)
			t.finish(o)
			continue
		}

		t.render(progress)
		pending++
	}

	if pending == 0 {
		close(b.done)
	}
}

func (b *Batch) complete(o *Orchestrator) {
	if b.Finished() {
		return
	}

	for _, t := range b.tweens {
		if t.state == tweenDone {
			continue
		}
		if t.state == tweenRunning {
			t.render(1)
		}
		t.finish(o)
	}
	close(b.done)
}

// NewOrchestrator creates a new Orchestrator object.
func NewOrchestrator(cfg Config, ctx presentation.Context, logger *zap.Logger) (*Orchestrator, error) {
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%s: must be GT 0", "Duration")
	}
	if cfg.StaggerUnit < 0 {
		return nil, fmt.Errorf("%s: must be GTE 0", "StaggerUnit")
	}
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("presentation context: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		cfg:    cfg,
		ctx:    ctx,
		logger: logger,
	}, nil
}
