package animation

import (
	"github.com/itiky/match-presenter/model"
)

// Sound effect names.
const (
	SoundDraw      = "draw"
	SoundDiscard   = "discard"
	SoundPlay      = "play"
	SoundMulligan  = "mulligan"
	SoundShuffle   = "shuffle"
	SoundTransform = "transform"
	SoundReveal    = "reveal"
	SoundScore     = "score"
	SoundRemove    = "remove"
)

type soundKey struct {
	to   model.Zone
	from model.Zone
}

// anyZone matches every source zone.
const anyZone model.Zone = "*"

var soundTable = map[soundKey]string{
	{to: model.ZoneHand, from: model.ZoneDeck}:       SoundDraw,
	{to: model.ZoneHand, from: model.ZoneMulligan}:   SoundDraw,
	{to: model.ZoneDeck, from: model.ZoneMulligan}:   SoundMulligan,
	{to: model.ZoneDeck, from: model.ZoneShuffle}:    SoundShuffle,
	{to: model.ZoneStory, from: model.ZoneHand}:      SoundPlay,
	{to: model.ZoneStory, from: model.ZoneStory}:     SoundScore,
	{to: model.ZoneStory, from: model.ZoneTransform}: SoundTransform,
	{to: model.ZoneDiscard, from: anyZone}:           SoundDiscard,
	{to: model.ZoneGone, from: anyZone}:              SoundRemove,
}

// SoundFor resolves the sound of a zone transition. Empty means no sound.
func SoundFor(to, from model.Zone) string {
	if name, found := soundTable[soundKey{to: to, from: from}]; found {
		return name
	}

	return soundTable[soundKey{to: to, from: anyZone}]
}

// resolveSound returns the op sound: an explicit one, the reveal flip, or the table entry.
func resolveSound(op model.AnimationOp) string {
	if op.Sound != "" {
		return op.Sound
	}
	if op.Kind == model.OpReveal {
		return SoundReveal
	}

	return SoundFor(op.ToZone, op.FromZone)
}
