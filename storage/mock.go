package storage

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

type (
	// MatchGenOptions configures GenerateMatch.
	MatchGenOptions struct {
		Rounds   int
		DeckSize int
		HandSize int
		Seed     int64
	}

	// matchBuilder plays a random match and records the local player's view of every state.
	matchBuilder struct {
		rng *rand.Rand
		// Full (unhidden) zones
		zones     [2]model.PlayerZones
		pending   [2][]model.ZoneAnimation
		priority  model.PlayerIndex
		breath    [2]int
		maxBreath [2]int
		score     [2]int
		mulligans [2]bool
		nextId    int
		//
		snapshots []*model.Snapshot
	}
)

// GenAndSaveMatch generates a random match recording and saves it to the directory.
func GenAndSaveMatch(directory string, opts MatchGenOptions, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("generating match", zap.Int("rounds", opts.Rounds), zap.Int64("seed", opts.Seed))
	rec, err := GenerateMatch(opts)
	if err != nil {
		return "", err
	}

	logger.Info("saving snapshots", zap.Int("count", rec.Size()))
	filePath, err := rec.SaveToFile(directory)
	if err != nil {
		return "", fmt.Errorf("save (%s): %w", directory, err)
	}

	return filePath, nil
}

// GenerateMatch builds a valid snapshot stream for a random match: initial draw, mulligan,
// turns with plays and passes, and a recap run at every round end.
func GenerateMatch(opts MatchGenOptions) (*Recording, error) {
	if opts.Rounds <= 0 {
		return nil, fmt.Errorf("%s: must be GT 0", "Rounds")
	}
	if opts.HandSize <= 0 {
		return nil, fmt.Errorf("%s: must be GT 0", "HandSize")
	}
	if opts.DeckSize < opts.HandSize+1 {
		return nil, fmt.Errorf("%s: must be GT HandSize", "DeckSize")
	}

	b := &matchBuilder{
		rng:    rand.New(rand.NewSource(opts.Seed)),
		nextId: 1,
	}
	if err := b.play(opts); err != nil {
		return nil, err
	}

	return &Recording{
		MatchId:   uuid.New(),
		Players:   [2]string{"you", "opponent"},
		Snapshots: b.snapshots,
	}, nil
}

func (b *matchBuilder) play(opts MatchGenOptions) error {
	for _, p := range model.Players {
		for i := 0; i < opts.DeckSize; i++ {
			b.zones[p].Deck = append(b.zones[p].Deck, b.newCard())
		}
	}

	// Initial draw
	for _, p := range model.Players {
		for i := 0; i < opts.HandSize; i++ {
			if err := b.draw(p); err != nil {
				return err
			}
		}
	}
	b.emit(false, "")

	// Local player mulligans a random card, the opponent keeps its hand
	if err := b.mulligan(model.Self, b.rng.Intn(opts.HandSize)); err != nil {
		return err
	}
	b.mulligans = [2]bool{true, true}
	b.emit(false, "")

	for round := 1; round <= opts.Rounds; round++ {
		if err := b.playRound(round); err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
	}

	winner := model.Self
	if b.score[model.Opponent] > b.score[model.Self] {
		winner = model.Opponent
	}
	last := b.emit(false, "win")
	last.Winner = &winner

	return nil
}

func (b *matchBuilder) playRound(round int) error {
	for _, p := range model.Players {
		b.maxBreath[p] = round
		if b.maxBreath[p] > 10 {
			b.maxBreath[p] = 10
		}
		b.breath[p] = b.maxBreath[p]
	}
	b.priority = model.PlayerIndex((round - 1) % 2)

	for passes := 0; passes < 2; {
		p := b.priority
		if idx := b.affordableCard(p); idx >= 0 && b.rng.Intn(4) > 0 {
			b.breath[p] -= b.zones[p].Hand[idx].Cost
			if p == model.Opponent {
				b.zones[p].Hand[idx].Hidden = true
			}
			if err := b.move(p, model.ZoneHand, idx, model.ZoneStory, len(b.zones[p].Story)); err != nil {
				return err
			}
			passes = 0
		} else {
			passes++
		}

		b.priority = p.Other()
		b.emit(false, "")
	}

	// Recap: reveal, then score every story card one by one
	for i := range b.zones[model.Opponent].Story {
		b.zones[model.Opponent].Story[i].Hidden = false
	}
	b.emit(true, "reveal")

	for _, p := range model.Players {
		for i := range b.zones[p].Story {
			card := b.zones[p].Story[i]
			if card.Cost == 0 {
				// Free cards transform into a stronger version when scored
				old := card
				card = b.newCard()
				card.Points = old.Points + 1
				b.zones[p].Story[i] = card
				b.pending[p] = append(b.pending[p], model.ZoneAnimation{
					Card:    &old,
					From:    model.ZoneTransform,
					To:      model.ZoneStory,
					ToIndex: i,
				})
			} else {
				b.pending[p] = append(b.pending[p], model.ZoneAnimation{
					Card:      &card,
					From:      model.ZoneStory,
					To:        model.ZoneStory,
					FromIndex: i,
					ToIndex:   i,
				})
			}
			b.score[p] += card.Points
			b.emit(true, "")
		}
	}

	// Cleanup: discard the story, refill hands
	for _, p := range model.Players {
		for len(b.zones[p].Story) > 0 {
			if err := b.move(p, model.ZoneStory, 0, model.ZoneDiscard, len(b.zones[p].Discard)); err != nil {
				return err
			}
		}
		for i := 0; i < 2; i++ {
			if err := b.draw(p); err != nil {
				return err
			}
		}
	}
	b.emit(false, "")

	return nil
}

// draw moves the top deck card to the hand, reshuffling the discard pile into an empty deck.
func (b *matchBuilder) draw(p model.PlayerIndex) error {
	if len(b.zones[p].Deck) == 0 {
		if len(b.zones[p].Discard) == 0 {
			return nil
		}
		for len(b.zones[p].Discard) > 0 {
			if err := b.move(p, model.ZoneDiscard, len(b.zones[p].Discard)-1, model.ZoneDeck, 0); err != nil {
				return err
			}
		}
		b.rng.Shuffle(len(b.zones[p].Deck), func(i, j int) {
			b.zones[p].Deck[i], b.zones[p].Deck[j] = b.zones[p].Deck[j], b.zones[p].Deck[i]
		})
		b.pending[p] = append(b.pending[p], model.ZoneAnimation{
			From: model.ZoneShuffle,
			To:   model.ZoneDeck,
		})
	}

	return b.move(p, model.ZoneDeck, 0, model.ZoneHand, len(b.zones[p].Hand))
}

// mulligan throws the hand card back to the deck bottom and draws a replacement into its slot.
func (b *matchBuilder) mulligan(p model.PlayerIndex, handIdx int) error {
	card := b.zones[p].Hand[handIdx]
	anims := []model.ZoneAnimation{
		{From: model.ZoneHand, FromIndex: handIdx, To: model.ZoneMulligan},
		{Card: &card, From: model.ZoneMulligan, To: model.ZoneDeck, ToIndex: len(b.zones[p].Deck)},
		{From: model.ZoneDeck, FromIndex: 0, To: model.ZoneHand, ToIndex: handIdx},
	}
	for _, anim := range anims {
		if err := b.apply(p, anim); err != nil {
			return err
		}
	}

	return nil
}

func (b *matchBuilder) move(p model.PlayerIndex, from model.Zone, fromIdx int, to model.Zone, toIdx int) error {
	return b.apply(p, model.ZoneAnimation{
		From:      from,
		FromIndex: fromIdx,
		To:        to,
		ToIndex:   toIdx,
	})
}

// apply updates the full zones and queues the animation as the local player sees it.
func (b *matchBuilder) apply(p model.PlayerIndex, anim model.ZoneAnimation) error {
	var card model.CardRef
	if src := b.zones[p].Cards(anim.From); !anim.From.IsPseudo() && anim.FromIndex >= 0 && anim.FromIndex < len(src) {
		card = src[anim.FromIndex]
	} else if anim.Card != nil {
		card = *anim.Card
	}

	zones, err := model.ApplyAnimations(b.zones[p], anim)
	if err != nil {
		return fmt.Errorf("model.ApplyAnimations: %w", err)
	}
	b.zones[p] = zones

	visible := card
	if isHiddenTo(p, anim.To) || (card.Hidden && anim.To == model.ZoneStory) {
		visible = model.CardRef{Hidden: true}
	}
	anim.Card = &visible
	b.pending[p] = append(b.pending[p], anim)

	return nil
}

// emit records the local player's view of the current state.
func (b *matchBuilder) emit(isRecap bool, soundCue string) *model.Snapshot {
	s := &model.Snapshot{
		VersionNo:         model.Version(len(b.snapshots)),
		Animations:        b.pending,
		Priority:          b.priority,
		IsRecap:           isRecap,
		MulligansComplete: b.mulligans,
		Breath:            b.breath,
		MaxBreath:         b.maxBreath,
		Score:             b.score,
		SoundCue:          soundCue,
	}
	for _, p := range model.Players {
		s.Players[p] = viewZones(p, b.zones[p])
	}
	for _, card := range b.zones[model.Self].Hand {
		s.CardCosts = append(s.CardCosts, card.Cost)
	}

	b.pending = [2][]model.ZoneAnimation{}
	b.snapshots = append(b.snapshots, s)

	return s
}

func (b *matchBuilder) affordableCard(p model.PlayerIndex) int {
	for i, card := range b.zones[p].Hand {
		if card.Cost <= b.breath[p] {
			return i
		}
	}

	return -1
}

func (b *matchBuilder) newCard() model.CardRef {
	card := model.CardRef{
		Id:     b.nextId,
		Name:   fmt.Sprintf("card-%d", b.nextId),
		Cost:   b.rng.Intn(4),
		Points: b.rng.Intn(3) + 1,
	}
	b.nextId++

	return card
}

// viewZones hides what the local player can't see.
func viewZones(p model.PlayerIndex, z model.PlayerZones) model.PlayerZones {
	view := z.Clone()
	for i := range view.Deck {
		view.Deck[i] = model.CardRef{Hidden: true}
	}
	if p == model.Opponent {
		for i := range view.Hand {
			view.Hand[i] = model.CardRef{Hidden: true}
		}
	}
	for i := range view.Story {
		if view.Story[i].Hidden {
			view.Story[i] = model.CardRef{Hidden: true}
		}
	}

	return view
}

func isHiddenTo(p model.PlayerIndex, zone model.Zone) bool {
	return zone == model.ZoneDeck || (p == model.Opponent && zone == model.ZoneHand)
}
