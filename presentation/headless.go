package presentation

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/itiky/match-presenter/model"
)

const (
	slotWidth  = 60.0
	rowHeight  = 120.0
	zoneColumn = 400.0
)

type (
	// Headless implements every presentation collaborator without a screen: objects live in memory,
	// regions log what they would draw. Used by the CLI client and tests.
	Headless struct {
		sync.Mutex
		logger  *zap.Logger
		objects map[slotKey]*HeadlessObject
		// Displayed snapshot versions in display order
		displayed []model.Version
		// Played sound names in play order
		sounds   []string
		messages []string
		// Proxy stats
		proxiesCreated   int
		proxiesDestroyed int
		//
		regions Regions
	}

	// HeadlessObject is a persistent card object.
	HeadlessObject struct {
		Card    model.CardRef
		Visible bool
	}

	headlessProxy struct {
		owner     *Headless
		card      model.CardRef
		x, y      float64
		sx, sy    float64
		alpha     float64
		faceUp    bool
		destroyed bool
	}

	slotKey struct {
		player model.PlayerIndex
		zone   model.Zone
		index  int
	}
)

// NewHeadless creates a new Headless object.
func NewHeadless(logger *zap.Logger) *Headless {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Headless{
		logger:  logger,
		objects: make(map[slotKey]*HeadlessObject),
	}
	h.regions = Regions{
		NewRegion("hand", func(s *model.Snapshot) {
			h.logger.Debug("hand", zap.Int("own", len(s.Own().Hand)), zap.Ints("costs", s.CardCosts))
		}),
		NewRegion("story", func(s *model.Snapshot) {
			h.logger.Debug("story",
				zap.Int("own", len(s.Players[model.Self].Story)),
				zap.Int("opponent", len(s.Players[model.Opponent].Story)),
			)
		}),
		NewRegion("status", func(s *model.Snapshot) {
			h.logger.Info("state displayed",
				zap.Int("version", int(s.VersionNo)),
				zap.Int("priority", int(s.Priority)),
				zap.Bool("recap", s.IsRecap),
				zap.Ints("breath", s.Breath[:]),
				zap.Ints("score", s.Score[:]),
			)
		}),
	}

	return h
}

// Context returns a presentation Context backed by the Headless object.
func (h *Headless) Context() Context {
	return Context{
		Layout:   h,
		Objects:  h,
		Proxies:  h,
		Sounds:   h,
		Display:  h,
		Notifier: h,
	}
}

// Position implements Layout interface: zones are columns, players are rows.
func (h *Headless) Position(player model.PlayerIndex, zone model.Zone, index int, s *model.Snapshot) (float64, float64) {
	y := rowHeight
	if player == model.Opponent {
		y = -rowHeight
	}

	switch zone {
	case model.ZoneDeck, model.ZoneShuffle:
		return -2 * zoneColumn, y
	case model.ZoneDiscard:
		return 2 * zoneColumn, y
	case model.ZoneExpended:
		return 2*zoneColumn + slotWidth, y
	case model.ZoneMulligan:
		return 0, 0
	case model.ZoneGone:
		return 0, 3 * y
	case model.ZoneStory, model.ZoneTransform:
		return float64(index) * slotWidth, y / 2
	}

	// Hand: centered on the slot count
	count := 0
	if s != nil {
		count = len(s.Players[player].Hand)
	}

	return (float64(index) - float64(count-1)/2) * slotWidth, 2 * y
}

// PermanentObjectFor implements Objects interface.
func (h *Headless) PermanentObjectFor(player model.PlayerIndex, zone model.Zone, index int) (VisualHandle, bool) {
	h.Lock()
	defer h.Unlock()

	obj, found := h.objects[slotKey{player: player, zone: zone, index: index}]
	if !found {
		return nil, false
	}

	return obj, true
}

// NewProxy implements ProxyFactory interface.
func (h *Headless) NewProxy(card model.CardRef, x, y float64) Proxy {
	h.Lock()
	defer h.Unlock()

	h.proxiesCreated++

	return &headlessProxy{
		owner:  h,
		card:   card,
		x:      x,
		y:      y,
		sx:     1,
		sy:     1,
		alpha:  1,
		faceUp: !card.Hidden,
	}
}

// PlaySound implements SoundPlayer interface.
func (h *Headless) PlaySound(name string) {
	h.Lock()
	h.sounds = append(h.sounds, name)
	h.Unlock()

	h.logger.Debug("sound", zap.String("name", name))
}

// DisplaySnapshot implements Display interface: rebuilds the persistent objects and depicts all regions.
func (h *Headless) DisplaySnapshot(s *model.Snapshot) {
	h.Lock()
	h.objects = make(map[slotKey]*HeadlessObject)
	for _, p := range model.Players {
		for _, zone := range []model.Zone{model.ZoneHand, model.ZoneDeck, model.ZoneDiscard, model.ZoneExpended, model.ZoneStory} {
			for i, card := range s.Players[p].Cards(zone) {
				h.objects[slotKey{player: p, zone: zone, index: i}] = &HeadlessObject{
					Card:    card,
					Visible: true,
				}
			}
		}
	}
	h.displayed = append(h.displayed, s.VersionNo)
	h.Unlock()

	h.regions.DisplaySnapshot(s)
}

// MatchStarted implements Notifier interface.
func (h *Headless) MatchStarted(info model.MatchStart) {
	h.notice(fmt.Sprintf("opponent found: %s (%d) vs %s (%d)", info.Name1, info.Elo1, info.Name2, info.Elo2))
}

// ShowMessage implements Notifier interface.
func (h *Headless) ShowMessage(text string) {
	h.notice(text)
}

// OpponentDisconnected implements Notifier interface.
func (h *Headless) OpponentDisconnected() {
	h.notice("opponent disconnected, you win")
}

// OpponentEmoted implements Notifier interface.
func (h *Headless) OpponentEmoted() {
	h.notice("opponent emote")
}

func (h *Headless) notice(text string) {
	h.Lock()
	h.messages = append(h.messages, text)
	h.Unlock()

	h.logger.Info("notice", zap.String("text", text))
}

// Displayed returns the displayed versions in display order.
func (h *Headless) Displayed() []model.Version {
	h.Lock()
	defer h.Unlock()

	return append([]model.Version(nil), h.displayed...)
}

// Sounds returns the played sounds in play order.
func (h *Headless) Sounds() []string {
	h.Lock()
	defer h.Unlock()

	return append([]string(nil), h.sounds...)
}

// Messages returns the shown notices.
func (h *Headless) Messages() []string {
	h.Lock()
	defer h.Unlock()

	return append([]string(nil), h.messages...)
}

// ProxyStats returns the number of created and destroyed proxies.
func (h *Headless) ProxyStats() (created, destroyed int) {
	h.Lock()
	defer h.Unlock()

	return h.proxiesCreated, h.proxiesDestroyed
}

// Object returns the persistent object of a slot.
func (h *Headless) Object(player model.PlayerIndex, zone model.Zone, index int) (*HeadlessObject, bool) {
	h.Lock()
	defer h.Unlock()

	obj, found := h.objects[slotKey{player: player, zone: zone, index: index}]

	return obj, found
}

// SetVisible implements VisualHandle interface.
func (o *HeadlessObject) SetVisible(visible bool) {
	o.Visible = visible
}

func (p *headlessProxy) MoveTo(x, y float64) {
	p.x, p.y = x, y
}

func (p *headlessProxy) SetScale(sx, sy float64) {
	p.sx, p.sy = sx, sy
}

func (p *headlessProxy) SetAlpha(alpha float64) {
	p.alpha = alpha
}

func (p *headlessProxy) SetFaceUp(faceUp bool) {
	p.faceUp = faceUp
}

func (p *headlessProxy) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	p.owner.Lock()
	p.owner.proxiesDestroyed++
	p.owner.Unlock()
}
