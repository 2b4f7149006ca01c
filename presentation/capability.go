package presentation

import (
	"github.com/itiky/match-presenter/model"
)

type (
	Clickable interface {
		Click()
	}

	Hoverable interface {
		Hover(on bool)
	}

	// Depictable renders its part of a snapshot.
	Depictable interface {
		Depict(s *model.Snapshot)
	}
)

type (
	// Button is a clickable, hoverable control assembled from callbacks.
	Button struct {
		Name    string
		Hint    string
		Hovered bool
		onClick func()
		onHover func(b *Button, on bool)
		enabled func() bool
	}

	ButtonOption func(b *Button)

	// Region depicts a part of the snapshot with a callback.
	Region struct {
		Name   string
		depict func(s *model.Snapshot)
	}

	// Regions fans a snapshot out to every region, implementing Display.
	Regions []Depictable
)

// WithEnabled gates clicks with a predicate.
func WithEnabled(fn func() bool) ButtonOption {
	return func(b *Button) {
		b.enabled = fn
	}
}

// WithHover sets a hover callback.
func WithHover(fn func(b *Button, on bool)) ButtonOption {
	return func(b *Button) {
		b.onHover = fn
	}
}

// NewButton creates a new Button object.
func NewButton(name, hint string, onClick func(), opts ...ButtonOption) *Button {
	b := &Button{
		Name:    name,
		Hint:    hint,
		onClick: onClick,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Enabled reports whether a click has an effect.
func (b *Button) Enabled() bool {
	return b.onClick != nil && (b.enabled == nil || b.enabled())
}

// Click implements Clickable interface.
func (b *Button) Click() {
	if !b.Enabled() {
		return
	}
	b.onClick()
}

// Hover implements Hoverable interface.
func (b *Button) Hover(on bool) {
	b.Hovered = on
	if b.onHover != nil {
		b.onHover(b, on)
	}
}

// NewRegion creates a new Region object.
func NewRegion(name string, depict func(s *model.Snapshot)) *Region {
	return &Region{
		Name:   name,
		depict: depict,
	}
}

// Depict implements Depictable interface.
func (r *Region) Depict(s *model.Snapshot) {
	if r.depict != nil {
		r.depict(s)
	}
}

// DisplaySnapshot implements Display interface.
func (r Regions) DisplaySnapshot(s *model.Snapshot) {
	for _, region := range r {
		region.Depict(s)
	}
}
