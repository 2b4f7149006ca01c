package client

import (
	"go.uber.org/zap"

	"github.com/itiky/match-presenter/playback"
	"github.com/itiky/match-presenter/presentation"
)

// Controls are the match buttons. Clicks must happen on the Client worker.
type Controls struct {
	Skip  *presentation.Button
	Recap *presentation.Button
	Pass  *presentation.Button
	Exit  *presentation.Button
}

func newControls(c *Client) *Controls {
	hover := presentation.WithHover(func(b *presentation.Button, on bool) {
		if on {
			c.logger.Debug("hint", zap.String("button", b.Name), zap.String("hint", b.Hint))
		}
	})

	return &Controls{
		Skip: presentation.NewButton("skip", "Skip to the latest state", func() {
			c.recap.Skip()
		}, hover, presentation.WithEnabled(c.recap.CanSkip)),
		Recap: presentation.NewButton("recap", "Replay the last round resolution", func() {
			c.recap.TriggerRecap()
		}, hover, presentation.WithEnabled(func() bool {
			return c.scheduler.State() != playback.StateRecapActive
		})),
		Pass: presentation.NewButton("pass", "Pass the turn", func() {
			if err := c.scheduler.PassTurn(); err != nil {
				c.logger.Warn("pass", zap.Error(err))
			}
		}, hover),
		Exit: presentation.NewButton("exit", "Leave the match", func() {
			if err := c.scheduler.ExitMatch(); err != nil {
				c.logger.Warn("exit", zap.Error(err))
			}
		}, hover),
	}
}
