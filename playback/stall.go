package playback

import (
	"fmt"
	"time"
)

// StallAction is what the scheduler does when the next version is missing while later ones are buffered.
type StallAction string

const (
	// StallBlock waits indefinitely.
	StallBlock StallAction = "block"
	// StallNotify tells the player once per missing version and keeps waiting.
	StallNotify StallAction = "notify"
	// StallJump moves past the gap to the lowest buffered version.
	StallJump StallAction = "jump"
)

// StallPolicy configures the gap watchdog. A zero Timeout disables it.
type StallPolicy struct {
	Timeout time.Duration
	Action  StallAction
}

// ParseStallAction converts a config value into a StallAction.
func ParseStallAction(s string) (StallAction, error) {
	switch a := StallAction(s); a {
	case StallBlock, StallNotify, StallJump:
		return a, nil
	case "":
		return StallBlock, nil
	}

	return "", fmt.Errorf("stall action %q: unknown", s)
}

func (p StallPolicy) enabled() bool {
	return p.Timeout > 0 && p.Action != StallBlock && p.Action != ""
}
