package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/itiky/match-presenter/model"
)

// Checksum computes a deterministic SHA-256 fingerprint of a snapshot payload.
// Used to tell a harmless transport redelivery from a conflicting payload for the same version.
func Checksum(s *model.Snapshot) string {
	hash := sha256.Sum256(canonicalSnapshot(s))

	return hex.EncodeToString(hash[:])
}

// canonicalSnapshot builds a canonical representation of every payload field.
// Zone order matters, so nothing is sorted.
func canonicalSnapshot(s *model.Snapshot) []byte {
	var buf bytes.Buffer

	winner := "-"
	if s.Winner != nil {
		winner = fmt.Sprintf("%d", *s.Winner)
	}
	buf.WriteString(fmt.Sprintf("SNAPSHOT:%d|%d|%t|%v|%s|%v|%v|%v|%v|%s\n",
		s.VersionNo,
		s.Priority,
		s.IsRecap,
		s.MulligansComplete,
		winner,
		s.CardCosts,
		s.Breath,
		s.MaxBreath,
		s.Score,
		s.SoundCue,
	))

	writeCards := func(name string, cards []model.CardRef) {
		buf.WriteString("  " + name + ":")
		for _, c := range cards {
			buf.WriteString(fmt.Sprintf(" %d/%d/%d/%t", c.Id, c.Cost, c.Points, c.Hidden))
		}
		buf.WriteString("\n")
	}

	for _, p := range model.Players {
		zones := s.Players[p]
		buf.WriteString(fmt.Sprintf("PLAYER:%d\n", p))
		writeCards("HAND", zones.Hand)
		writeCards("DECK", zones.Deck)
		writeCards("DISCARD", zones.Discard)
		writeCards("EXPENDED", zones.Expended)
		writeCards("STORY", zones.Story)

		for i, anim := range s.Animations[p] {
			card := "-"
			if anim.Card != nil {
				card = fmt.Sprintf("%d/%t", anim.Card.Id, anim.Card.Hidden)
			}
			buf.WriteString(fmt.Sprintf("  ANIM:%d|%s|%s|%d|%s|%d\n", i, card, anim.From, anim.FromIndex, anim.To, anim.ToIndex))
		}
	}

	return buf.Bytes()
}
