// Package zonediff turns the difference between two consecutive snapshots into an ordered list of animation ops.
//
// Moves are never inferred from set differences: cards in zones like the deck are not distinguishable
// by identity, so the server enumerates every movement and the engine only classifies and orders them.
// Op order is the authoritative animation order and always equals the server emission order.
package zonediff

import (
	"github.com/itiky/match-presenter/model"
)

// Diff returns the AnimationOps that present next after prev (prev is nil for the first snapshot).
// Logged movements come first (player 0, then player 1, each in server order) followed by story reveals.
func Diff(prev, next *model.Snapshot) []model.AnimationOp {
	if next == nil {
		return nil
	}

	ops := make([]model.AnimationOp, 0, len(next.Animations[model.Self])+len(next.Animations[model.Opponent]))
	for _, p := range model.Players {
		for _, anim := range next.Animations[p] {
			ops = append(ops, opFromAnimation(p, anim))
		}
	}

	return append(ops, StoryReveals(prev, next)...)
}

// StoryReveals detects story cards that were face-down in prev and are face-up in next.
// Slots are compared by index, independently of the animation log.
func StoryReveals(prev, next *model.Snapshot) []model.AnimationOp {
	if prev == nil || next == nil {
		return nil
	}

	var ops []model.AnimationOp
	for _, p := range model.Players {
		prevMask := prev.Players[p].StoryHiddenMask()
		nextMask := next.Players[p].StoryHiddenMask()

		for i := 0; i < len(prevMask) && i < len(nextMask); i++ {
			if !prevMask[i] || nextMask[i] {
				continue
			}

			card := next.Players[p].Story[i]
			ops = append(ops, model.AnimationOp{
				Kind:      model.OpReveal,
				Owner:     p,
				Card:      &card,
				FromZone:  model.ZoneStory,
				ToZone:    model.ZoneStory,
				FromIndex: i,
				ToIndex:   i,
			})
		}
	}

	return ops
}

// opFromAnimation classifies a single server animation entry.
func opFromAnimation(p model.PlayerIndex, anim model.ZoneAnimation) model.AnimationOp {
	op := model.AnimationOp{
		Kind:      model.OpMove,
		Owner:     p,
		FromZone:  anim.From,
		ToZone:    anim.To,
		FromIndex: anim.FromIndex,
		ToIndex:   anim.ToIndex,
	}
	if anim.Card != nil {
		card := *anim.Card
		op.Card = &card
	}

	switch {
	case anim.From == model.ZoneShuffle:
		// Decoys only, no card identity
		op.Kind = model.OpShuffle
		op.Card = nil
	case anim.From == model.ZoneTransform:
		op.Kind = model.OpTransform
	case anim.From == model.ZoneMulligan:
		op.Kind = model.OpMulligan
	case anim.From == anim.To:
		op.Kind = model.OpEmphasis
	}

	return op
}
