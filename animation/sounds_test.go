package animation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itiky/match-presenter/model"
)

func Test_SoundFor(t *testing.T) {
	cases := []struct {
		to, from model.Zone
		sound    string
	}{
		{model.ZoneHand, model.ZoneDeck, SoundDraw},
		{model.ZoneHand, model.ZoneMulligan, SoundDraw},
		{model.ZoneDeck, model.ZoneMulligan, SoundMulligan},
		{model.ZoneDeck, model.ZoneShuffle, SoundShuffle},
		{model.ZoneStory, model.ZoneHand, SoundPlay},
		{model.ZoneStory, model.ZoneTransform, SoundTransform},
		{model.ZoneDiscard, model.ZoneStory, SoundDiscard},
		{model.ZoneDiscard, model.ZoneHand, SoundDiscard},
		{model.ZoneGone, model.ZoneHand, SoundRemove},
		// no sound
		{model.ZoneExpended, model.ZoneStory, ""},
		{model.ZoneMulligan, model.ZoneHand, ""},
	}

	for _, c := range cases {
		require.Equal(t, c.sound, SoundFor(c.to, c.from), "%s <- %s", c.to, c.from)
	}
}

func Test_ResolveSound(t *testing.T) {
	op := model.AnimationOp{Kind: model.OpMove, FromZone: model.ZoneHand, ToZone: model.ZoneStory}
	require.Equal(t, SoundPlay, resolveSound(op))

	op.Sound = "custom"
	require.Equal(t, "custom", resolveSound(op))

	require.Equal(t, SoundReveal, resolveSound(model.AnimationOp{Kind: model.OpReveal, FromZone: model.ZoneStory, ToZone: model.ZoneStory}))
}
