// Package presentation defines the collaborators the synchronizer drives: screen layout, persistent card
// objects, transient proxies, sounds and the on-screen regions a snapshot fans out to.
package presentation

import (
	"fmt"

	"github.com/itiky/match-presenter/model"
)

type (
	// Layout resolves the on-screen position of a zone slot. Must be a pure function of its inputs.
	Layout interface {
		Position(player model.PlayerIndex, zone model.Zone, index int, s *model.Snapshot) (x, y float64)
	}

	// VisualHandle is a persistent on-screen card object.
	VisualHandle interface {
		SetVisible(visible bool)
	}

	// Objects looks up the persistent object a card becomes once its animation completes.
	Objects interface {
		PermanentObjectFor(player model.PlayerIndex, zone model.Zone, index int) (VisualHandle, bool)
	}

	// Proxy is a transient card image used while animating.
	Proxy interface {
		MoveTo(x, y float64)
		SetScale(sx, sy float64)
		SetAlpha(alpha float64)
		SetFaceUp(faceUp bool)
		Destroy()
	}

	ProxyFactory interface {
		NewProxy(card model.CardRef, x, y float64) Proxy
	}

	SoundPlayer interface {
		PlaySound(name string)
	}

	// Display fans a snapshot out to all on-screen regions once it becomes visible.
	Display interface {
		DisplaySnapshot(s *model.Snapshot)
	}

	// Notifier surfaces protocol events that are independent of the snapshot stream.
	Notifier interface {
		MatchStarted(info model.MatchStart)
		ShowMessage(text string)
		OpponentDisconnected()
		OpponentEmoted()
	}

	// Context holds the collaborators for a single match.
	Context struct {
		Layout   Layout
		Objects  Objects
		Proxies  ProxyFactory
		Sounds   SoundPlayer
		Display  Display
		Notifier Notifier
	}
)

// Validate checks the required collaborators and fills optional ones with no-op implementations.
func (c *Context) Validate() error {
	if c.Layout == nil {
		return fmt.Errorf("%s: nil", "Layout")
	}
	if c.Objects == nil {
		return fmt.Errorf("%s: nil", "Objects")
	}
	if c.Proxies == nil {
		return fmt.Errorf("%s: nil", "Proxies")
	}
	if c.Display == nil {
		return fmt.Errorf("%s: nil", "Display")
	}
	if c.Sounds == nil {
		c.Sounds = silence{}
	}
	if c.Notifier == nil {
		c.Notifier = noNotices{}
	}

	return nil
}

type silence struct{}

func (silence) PlaySound(string) {}

type noNotices struct{}

func (noNotices) MatchStarted(model.MatchStart) {}
func (noNotices) ShowMessage(string)            {}
func (noNotices) OpponentDisconnected()         {}
func (noNotices) OpponentEmoted()               {}
