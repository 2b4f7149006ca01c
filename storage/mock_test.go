package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itiky/match-presenter/model"
)

// Test checks the generated stream is a valid match: contiguous versions, zone changes explained
// by the animation log and a recap run at every round end.
func Test_GenerateMatch_Valid(t *testing.T) {
	opts := MatchGenOptions{Rounds: 4, DeckSize: 8, HandSize: 3, Seed: 42}

	rec, err := GenerateMatch(opts)
	require.NoError(t, err)
	require.Greater(t, rec.Size(), 2)
	t.Logf("Generated %d snapshots", rec.Size())

	recapRuns, inRecap := 0, false
	for i, s := range rec.Snapshots {
		require.Equal(t, model.Version(i), s.VersionNo, "versions must be contiguous")
		require.Equal(t, len(s.Own().Hand), len(s.CardCosts), "v%d: cardCosts", i)

		for _, card := range s.Players[model.Self].Deck {
			require.True(t, card.Hidden, "v%d: own deck visible", i)
		}
		for _, card := range s.Players[model.Opponent].Hand {
			require.True(t, card.Hidden, "v%d: opponent hand visible", i)
		}

		if s.IsRecap && !inRecap {
			recapRuns++
		}
		inRecap = s.IsRecap

		if i == 0 {
			continue
		}
		prev := rec.Snapshots[i-1]
		for _, p := range model.Players {
			zones, err := model.ApplyAnimations(prev.Players[p], s.Animations[p]...)
			require.NoError(t, err, "v%d p%d", i, p)

			for _, zone := range []model.Zone{model.ZoneHand, model.ZoneDeck, model.ZoneDiscard, model.ZoneStory} {
				require.Len(t, zones.Cards(zone), len(s.Players[p].Cards(zone)), "v%d p%d %s", i, p, zone)
			}
		}
	}
	require.Equal(t, opts.Rounds, recapRuns)

	last := rec.Snapshots[rec.Size()-1]
	require.True(t, last.IsOver())
	require.Equal(t, "win", last.SoundCue)
	require.True(t, rec.Snapshots[1].MulligansDone())
}

func Test_GenerateMatch_Options(t *testing.T) {
	_, err := GenerateMatch(MatchGenOptions{Rounds: 0, DeckSize: 5, HandSize: 3})
	require.Error(t, err)

	_, err = GenerateMatch(MatchGenOptions{Rounds: 1, DeckSize: 5, HandSize: 0})
	require.Error(t, err)

	_, err = GenerateMatch(MatchGenOptions{Rounds: 1, DeckSize: 3, HandSize: 3})
	require.Error(t, err)

	a, err := GenerateMatch(MatchGenOptions{Rounds: 2, DeckSize: 6, HandSize: 2, Seed: 7})
	require.NoError(t, err)
	b, err := GenerateMatch(MatchGenOptions{Rounds: 2, DeckSize: 6, HandSize: 2, Seed: 7})
	require.NoError(t, err)
	require.Equal(t, a.Size(), b.Size())
	for i := range a.Snapshots {
		require.Equal(t, Checksum(a.Snapshots[i]), Checksum(b.Snapshots[i]), "same seed, v%d", i)
	}
}

func Test_GenAndSaveMatch(t *testing.T) {
	filePath, err := GenAndSaveMatch(t.TempDir(), MatchGenOptions{Rounds: 1, DeckSize: 5, HandSize: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec, err := LoadRecording(filePath)
	require.NoError(t, err)
	require.Greater(t, rec.Size(), 0)
}
