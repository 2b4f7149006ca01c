package model

import "fmt"

// OpKind selects the visual treatment of an AnimationOp.
type OpKind string

const (
	// OpMove translates a card between two zone slots.
	OpMove OpKind = "move"
	// OpEmphasis scales up and fades a card that stayed in its zone.
	OpEmphasis OpKind = "emphasis"
	// OpMulligan throws a card back from the mulligan overlay.
	OpMulligan OpKind = "mulligan"
	// OpShuffle flips two decoy cards over the deck.
	OpShuffle OpKind = "shuffle"
	// OpTransform fades the old art out over the new persistent card.
	OpTransform OpKind = "transform"
	// OpReveal flips a face-down story card face-up.
	OpReveal OpKind = "reveal"
)

// AnimationOp is a single derived visual operation. Ops are transient: built from a
// (previous, next) snapshot pair and consumed within one display cycle.
type AnimationOp struct {
	Kind      OpKind
	Owner     PlayerIndex
	Card      *CardRef
	FromZone  Zone
	ToZone    Zone
	FromIndex int
	ToIndex   int
	// Empty means no sound
	Sound string
}

// String implements the stringer interface.
func (op AnimationOp) String() string {
	card := "-"
	if op.Card != nil {
		card = fmt.Sprintf("#%d", op.Card.Id)
		if op.Card.Hidden {
			card = "hidden"
		}
	}

	return fmt.Sprintf("%s p%d %s: %s[%d] -> %s[%d]", op.Kind, op.Owner, card, op.FromZone, op.FromIndex, op.ToZone, op.ToIndex)
}
