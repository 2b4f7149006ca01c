package animation

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/presentation"
)

type tweenState int

const (
	tweenPending tweenState = iota
	tweenRunning
	tweenDone
)

// tween animates a single AnimationOp.
type tween struct {
	op       model.AnimationOp
	sound    string
	delay    time.Duration
	duration time.Duration
	// Screen positions
	fromX, fromY float64
	toX, toY     float64
	//
	proxies []presentation.Proxy
	state   tweenState
}

// start creates the proxies and plays the op sound.
func (t *tween) start(o *Orchestrator) {
	t.state = tweenRunning

	switch t.op.Kind {
	case model.OpShuffle:
		// Two decoys flipped over the deck, unrelated to any card identity
		for i := 0; i < 2; i++ {
			decoy := model.CardRef{Name: "decoy-" + uuid.NewString(), Hidden: true}
			t.proxies = append(t.proxies, o.ctx.Proxies.NewProxy(decoy, t.toX+float64(i)*decoyOffset, t.toY))
		}
	case model.OpEmphasis, model.OpTransform:
		t.proxies = append(t.proxies, o.ctx.Proxies.NewProxy(t.card(), t.toX, t.toY))
	case model.OpReveal:
		proxy := o.ctx.Proxies.NewProxy(t.card(), t.toX, t.toY)
		proxy.SetFaceUp(false)
		t.proxies = append(t.proxies, proxy)
	default:
		t.proxies = append(t.proxies, o.ctx.Proxies.NewProxy(t.card(), t.fromX, t.fromY))
	}

	if t.sound != "" {
		o.ctx.Sounds.PlaySound(t.sound)
	}
}

// render applies the progress [0; 1] to the proxies.
func (t *tween) render(progress float64) {
	switch t.op.Kind {
	case model.OpEmphasis:
		scale := 1 + (emphasisScale-1)*progress
		for _, p := range t.proxies {
			p.SetScale(scale, scale)
			p.SetAlpha(1 - progress)
		}
	case model.OpTransform:
		for _, p := range t.proxies {
			p.SetAlpha(1 - progress)
		}
	case model.OpShuffle, model.OpReveal:
		// Flip: shrink horizontally, switch face at the midpoint, grow back
		sx := math.Abs(1 - 2*progress)
		for i, p := range t.proxies {
			p.SetScale(sx, 1)
			faceUp := progress >= 0.5
			if t.op.Kind == model.OpShuffle {
				faceUp = faceUp != (i%2 == 0)
			}
			p.SetFaceUp(faceUp)
		}
	default:
		eased := easeOutCubic(progress)
		for _, p := range t.proxies {
			p.MoveTo(t.fromX+(t.toX-t.fromX)*eased, t.fromY+(t.toY-t.fromY)*eased)
		}
	}
}

// finish transfers visibility to the persistent object and destroys the proxies.
// A missing persistent object is not an error: the proxies are simply dropped.
func (t *tween) finish(o *Orchestrator) {
	t.state = tweenDone

	if t.op.Kind != model.OpShuffle {
		if obj, found := o.ctx.Objects.PermanentObjectFor(t.op.Owner, t.op.ToZone, t.op.ToIndex); found {
			obj.SetVisible(true)
		} else if !t.op.ToZone.IsPseudo() {
			o.logger.Debug("permanent object missing, dropping proxy",
				zap.String("op", t.op.String()),
			)
		}
	}

	for _, p := range t.proxies {
		p.Destroy()
	}
	t.proxies = nil
}

func (t *tween) card() model.CardRef {
	if t.op.Card == nil {
		return model.CardRef{Hidden: true}
	}

	return *t.op.Card
}

func easeOutCubic(x float64) float64 {
	return 1 - math.Pow(1-x, 3)
}
