package model

import (
	"fmt"
	"strings"
)

type (
	// PlayerIndex identifies a match participant. Snapshots are viewer-relative: Self is always the local player.
	PlayerIndex int

	// Version is a snapshot version number, strictly increasing per match.
	Version int
)

const (
	Self     PlayerIndex = 0
	Opponent PlayerIndex = 1

	// NoVersion is the "before first" cursor sentinel.
	NoVersion Version = -1
)

// Players lists both player indices in display order.
var Players = [2]PlayerIndex{Self, Opponent}

// Other returns the opposing player index.
func (p PlayerIndex) Other() PlayerIndex {
	return 1 - p
}

// Zone is a named region a card can occupy.
// Shuffle and Transform are pseudo-zones only used to tag special animations.
type Zone string

const (
	ZoneHand      Zone = "hand"
	ZoneDeck      Zone = "deck"
	ZoneDiscard   Zone = "discard"
	ZoneStory     Zone = "story"
	ZoneExpended  Zone = "expended"
	ZoneMulligan  Zone = "mulligan"
	ZoneGone      Zone = "gone"
	ZoneShuffle   Zone = "shuffle"
	ZoneTransform Zone = "transform"
)

// IsPseudo reports whether the zone never holds cards in a snapshot.
func (z Zone) IsPseudo() bool {
	switch z {
	case ZoneMulligan, ZoneGone, ZoneShuffle, ZoneTransform:
		return true
	}

	return false
}

// ParseZone converts the wire representation into a Zone.
func ParseZone(s string) (Zone, error) {
	z := Zone(strings.ToLower(s))
	switch z {
	case ZoneHand, ZoneDeck, ZoneDiscard, ZoneStory, ZoneExpended, ZoneMulligan, ZoneGone, ZoneShuffle, ZoneTransform:
		return z, nil
	}

	return "", fmt.Errorf("unknown zone: %q", s)
}
