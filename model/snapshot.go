package model

import (
	"fmt"
	"strings"
)

type (
	// CardRef is a card as it is visible to the local player.
	// Hidden cards (opponent hand, face-down story cards) carry no identity.
	CardRef struct {
		Id     int    `json:"id"`
		Name   string `json:"name,omitempty"`
		Cost   int    `json:"cost"`
		Points int    `json:"points"`
		Hidden bool   `json:"hidden,omitempty"`
	}

	// PlayerZones keeps a player's ordered zones.
	PlayerZones struct {
		Hand     []CardRef `json:"hand"`
		Deck     []CardRef `json:"deck"`
		Discard  []CardRef `json:"discard"`
		Expended []CardRef `json:"expended"`
		Story    []CardRef `json:"story"`
	}

	// ZoneAnimation is a server-enumerated card movement between two zones.
	ZoneAnimation struct {
		Card      *CardRef `json:"card,omitempty"`
		From      Zone     `json:"from"`
		To        Zone     `json:"to"`
		FromIndex int      `json:"fromIndex"`
		ToIndex   int      `json:"toIndex"`
	}

	// Snapshot is one authoritative, versioned description of the full visible match state.
	// A Snapshot is never mutated once it has been enqueued.
	Snapshot struct {
		VersionNo         Version            `json:"versionNo"`
		Players           [2]PlayerZones     `json:"players"`
		Animations        [2][]ZoneAnimation `json:"animations"`
		Priority          PlayerIndex        `json:"priority"`
		IsRecap           bool               `json:"isRecap"`
		MulligansComplete [2]bool            `json:"mulligansComplete"`
		Winner            *PlayerIndex       `json:"winner,omitempty"`
		CardCosts         []int              `json:"cardCosts"`
		Breath            [2]int             `json:"breath"`
		MaxBreath         [2]int             `json:"maxBreath"`
		Score             [2]int             `json:"score"`
		SoundCue          string             `json:"soundCue,omitempty"`
	}
)

// Cards returns the ordered content of a zone; pseudo-zones have none.
func (z *PlayerZones) Cards(zone Zone) []CardRef {
	switch zone {
	case ZoneHand:
		return z.Hand
	case ZoneDeck:
		return z.Deck
	case ZoneDiscard:
		return z.Discard
	case ZoneExpended:
		return z.Expended
	case ZoneStory:
		return z.Story
	}

	return nil
}

// zoneSlice returns a pointer to the zone slice for in-place edits (used by ApplyAnimations).
func (z *PlayerZones) zoneSlice(zone Zone) *[]CardRef {
	switch zone {
	case ZoneHand:
		return &z.Hand
	case ZoneDeck:
		return &z.Deck
	case ZoneDiscard:
		return &z.Discard
	case ZoneExpended:
		return &z.Expended
	case ZoneStory:
		return &z.Story
	}

	return nil
}

// StoryHiddenMask returns per-slot "is this story card face-down" flags.
func (z *PlayerZones) StoryHiddenMask() []bool {
	mask := make([]bool, len(z.Story))
	for i, card := range z.Story {
		mask[i] = card.Hidden
	}

	return mask
}

// Clone returns a deep copy of the zones.
func (z PlayerZones) Clone() PlayerZones {
	cp := func(src []CardRef) []CardRef {
		if src == nil {
			return nil
		}
		dst := make([]CardRef, len(src))
		copy(dst, src)
		return dst
	}

	return PlayerZones{
		Hand:     cp(z.Hand),
		Deck:     cp(z.Deck),
		Discard:  cp(z.Discard),
		Expended: cp(z.Expended),
		Story:    cp(z.Story),
	}
}

// Own returns the local player's zones.
func (s *Snapshot) Own() *PlayerZones {
	return &s.Players[Self]
}

// MulligansDone reports whether both players finished their mulligan.
func (s *Snapshot) MulligansDone() bool {
	return s.MulligansComplete[Self] && s.MulligansComplete[Opponent]
}

// IsOver reports whether the match has a winner.
func (s *Snapshot) IsOver() bool {
	return s.Winner != nil
}

// String implements the stringer interface.
func (s *Snapshot) String() string {
	str := strings.Builder{}
	str.WriteString(fmt.Sprintf("v%d priority=%d recap=%t breath=%v/%v score=%v\n",
		s.VersionNo, s.Priority, s.IsRecap, s.Breath, s.MaxBreath, s.Score))
	for _, p := range Players {
		zones := s.Players[p]
		str.WriteString(fmt.Sprintf("  p%d hand=%d deck=%d discard=%d expended=%d story=%d\n",
			p, len(zones.Hand), len(zones.Deck), len(zones.Discard), len(zones.Expended), len(zones.Story)))
	}

	return str.String()
}
