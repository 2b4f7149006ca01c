package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
	"github.com/itiky/match-presenter/playback"
)

const userPauseReason = "user"

// monitoredSink counts outbound commands.
type monitoredSink struct {
	sink    playback.CommandSink
	monitor *Monitor
}

// Send implements playback.CommandSink interface.
func (s *monitoredSink) Send(msg model.Message) error {
	if err := s.sink.Send(msg); err != nil {
		return err
	}
	s.monitor.CommandSent()

	return nil
}

// handleMessage dispatches an inbound server message.
func (c *Client) handleMessage(msg model.Message, now time.Time) {
	switch m := msg.(type) {
	case *model.TransmitState:
		snapshot := m.State
		c.monitor.SnapshotReceived(snapshot.VersionNo, now)
		c.queue.Enqueue(&snapshot)
	case *model.MatchStart:
		c.players = [2]string{m.Name1, m.Name2}
		c.ctx.Notifier.MatchStarted(*m)
		c.logger.Info("match started", zap.String("player", m.Name1), zap.String("opponent", m.Name2))
	case *model.SignalError:
		// The rejected action is not retried: the next snapshot is authoritative
		c.ctx.Notifier.ShowMessage("Action rejected by the server")
		c.logger.Warn("server signaled an error")
	case *model.OpponentDisconnected:
		c.ctx.Notifier.OpponentDisconnected()
		c.logger.Info("opponent disconnected")
	case *model.OpponentEmote:
		c.ctx.Notifier.OpponentEmoted()
	default:
		c.logger.Warn("unexpected inbound message", zap.String("type", string(msg.MessageType())))
	}
}

// handleCommand executes a user command line. Returns true if the client should exit.
func (c *Client) handleCommand(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "skip":
		c.controls.Skip.Click()
	case "recap":
		c.controls.Recap.Click()
	case "pass":
		c.controls.Pass.Click()
	case "exit", "quit":
		c.controls.Exit.Click()
		return true
	case "play":
		err = c.playCard(fields[1:])
	case "mulligan":
		err = c.mulligan(fields[1:])
	case "emote":
		err = c.scheduler.Emote()
	case "pause":
		c.scheduler.Pause(userPauseReason)
	case "resume":
		c.scheduler.Resume(userPauseReason)
	case "status":
		cursor := c.scheduler.Cursor()
		c.ctx.Notifier.ShowMessage(fmt.Sprintf("state %s: version %d of %d",
			c.scheduler.State(), cursor.CurrentVersion, cursor.MaxVersionSeen))
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}

	if err != nil {
		c.logger.Warn("command failed", zap.String("line", line), zap.Error(err))
		c.ctx.Notifier.ShowMessage(err.Error())
	}

	return false
}

// playCard parses "play <handIndex>".
func (c *Client) playCard(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: play <card number>")
	}

	cardNum, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("card number %q: %w", args[0], err)
	}

	return c.scheduler.PlayCard(cardNum)
}

// mulligan parses "mulligan [handIndex...]": the listed cards (0-2) are thrown back.
func (c *Client) mulligan(args []string) error {
	selection := [3]bool{}
	for _, arg := range args {
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("card number %q: %w", arg, err)
		}
		if idx < 0 || idx >= len(selection) {
			return fmt.Errorf("card number %d: must be in [0; %d]", idx, len(selection)-1)
		}
		selection[idx] = true
	}

	return c.scheduler.Mulligan(selection)
}
