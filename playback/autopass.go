package playback

import (
	"github.com/itiky/match-presenter/model"
)

// ShouldAutoPass decides whether the local player has no meaningful choice in the snapshot.
// Pure function: the same snapshot and settings always yield the same result.
func ShouldAutoPass(s *model.Snapshot, autopass, isTutorial bool) bool {
	if s == nil {
		return false
	}
	if !s.MulligansDone() {
		return false
	}
	if s.IsRecap {
		return false
	}
	if s.Priority != model.Self {
		return false
	}
	if ownHandSize(s) == 0 {
		return true
	}
	if !autopass && !isTutorial {
		return false
	}

	breath := s.Breath[model.Self]
	for _, cost := range s.CardCosts {
		if cost < breath {
			return false
		}
	}

	return true
}

// ownHandSize uses the cost list when the hand zone was not transmitted.
func ownHandSize(s *model.Snapshot) int {
	if n := len(s.Own().Hand); n > 0 {
		return n
	}

	return len(s.CardCosts)
}
