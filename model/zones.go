package model

import (
	"fmt"
	"strings"
)

// String implements the stringer interface.
func (z PlayerZones) String() string {
	str := strings.Builder{}
	for _, zone := range []Zone{ZoneHand, ZoneDeck, ZoneDiscard, ZoneExpended, ZoneStory} {
		str.WriteString(fmt.Sprintf("- %s:", zone))
		for _, card := range z.Cards(zone) {
			if card.Hidden {
				str.WriteString(" [?]")
				continue
			}
			str.WriteString(fmt.Sprintf(" [%d]", card.Id))
		}
		str.WriteString("\n")
	}

	return str.String()
}

// ApplyAnimations upgrades the input zones using server-enumerated ZoneAnimation entries.
// Entries from a pseudo-zone only insert, entries to a pseudo-zone only remove.
// Same-zone, Shuffle and Transform entries are visual only and leave the content untouched.
func ApplyAnimations(z PlayerZones, anims ...ZoneAnimation) (PlayerZones, error) {
	z = z.Clone()

	for i, anim := range anims {
		if anim.From == anim.To || anim.From == ZoneShuffle || anim.From == ZoneTransform {
			continue
		}

		card := CardRef{Hidden: true}
		if anim.Card != nil {
			card = *anim.Card
		}

		if src := z.zoneSlice(anim.From); src != nil {
			if anim.FromIndex < 0 {
				return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): fromIndex: must be GTE 0", i, anim.From, anim.To)
			}
			if anim.FromIndex >= len(*src) {
				return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): fromIndex: must be LT zone length", i, anim.From, anim.To)
			}

			// Cut
			if anim.Card == nil {
				card = (*src)[anim.FromIndex]
			}
			*src = append((*src)[:anim.FromIndex], (*src)[anim.FromIndex+1:]...)
		} else if !anim.From.IsPseudo() {
			return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): from: unknown zone", i, anim.From, anim.To)
		}

		if dst := z.zoneSlice(anim.To); dst != nil {
			if anim.ToIndex < 0 {
				return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): toIndex: must be GTE 0", i, anim.From, anim.To)
			}
			if anim.ToIndex > len(*dst) {
				return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): toIndex: must be LTE zone length", i, anim.From, anim.To)
			}

			// Insert
			*dst = append(*dst, CardRef{})
			copy((*dst)[anim.ToIndex+1:], (*dst)[anim.ToIndex:])
			(*dst)[anim.ToIndex] = card
		} else if !anim.To.IsPseudo() {
			return PlayerZones{}, fmt.Errorf("op[%d] (%s->%s): to: unknown zone", i, anim.From, anim.To)
		}
	}

	return z, nil
}
