package toast

import (
	"maps"
	"time"
)

// DefaultDuration is how long a toast stays visible unless configured otherwise.
const DefaultDuration = 5 * time.Second

// Options is the fully resolved configuration of a single toast.
type Options struct {
	// Position is where the renderer anchors the toast.
	Position Position

	// Duration until automatic removal. Zero makes the toast sticky.
	Duration time.Duration

	// DismissOnClick tells the renderer to dismiss the toast when clicked.
	DismissOnClick bool

	// Icon rendered next to the message. Zero means none.
	Icon Icon

	// Props are passed through to a renderable message untouched.
	Props map[string]any
}

// Option overrides one field of the merged options.
type Option func(*Options)

// WithPosition sets the screen anchor.
func WithPosition(p Position) Option {
	return func(o *Options) {
		o.Position = p
	}
}

// WithDuration sets the auto-dismiss delay. Zero or negative makes the toast sticky.
func WithDuration(d time.Duration) Option {
	return func(o *Options) {
		if d < 0 {
			d = 0
		}
		o.Duration = d
	}
}

// Sticky is shorthand for WithDuration(0).
func Sticky() Option {
	return WithDuration(0)
}

// WithDismissOnClick sets whether a click dismisses the toast.
func WithDismissOnClick(dismiss bool) Option {
	return func(o *Options) {
		o.DismissOnClick = dismiss
	}
}

// WithIcon replaces the per-type default icon. Pass Icon{} to render none.
func WithIcon(icon Icon) Option {
	return func(o *Options) {
		o.Icon = icon
	}
}

// WithProps sets the props handed to a renderable message.
func WithProps(props map[string]any) Option {
	return func(o *Options) {
		o.Props = maps.Clone(props)
	}
}

// Defaults are the store-wide options every toast is merged onto.
type Defaults struct {
	Position       Position
	Duration       time.Duration
	DismissOnClick bool

	// Icons holds the default icon per type. A missing type has no icon.
	Icons map[Type]Icon
}

// DefaultDefaults returns the defaults a new Store starts with.
func DefaultDefaults() Defaults {
	return Defaults{
		Position:       BottomEnd,
		Duration:       DefaultDuration,
		DismissOnClick: true,
		Icons: map[Type]Icon{
			TypeInfo:    InfoIcon,
			TypeSuccess: SuccessIcon,
			TypeWarning: WarningIcon,
			TypeError:   ErrorIcon,
			TypeLoading: LoadingIcon,
		},
	}
}

// clone returns a copy that shares nothing mutable with d.
func (d Defaults) clone() Defaults {
	d.Icons = maps.Clone(d.Icons)
	if d.Icons == nil {
		d.Icons = make(map[Type]Icon)
	}
	return d
}

// DefaultsPatch is a partial update of Defaults. Nil fields are left as they are.
type DefaultsPatch struct {
	Position       *Position
	Duration       *time.Duration
	DismissOnClick *bool

	// Icons are merged key by key into the current icons.
	Icons map[Type]Icon
}

// IsEmpty reports whether applying the patch would change nothing.
func (p DefaultsPatch) IsEmpty() bool {
	return p.Position == nil && p.Duration == nil && p.DismissOnClick == nil && len(p.Icons) == 0
}

// apply merges the patch into d, which must own its Icons map.
func (p DefaultsPatch) apply(d *Defaults) {
	if p.Position != nil {
		d.Position = *p.Position
	}
	if p.Duration != nil {
		dur := *p.Duration
		if dur < 0 {
			dur = 0
		}
		d.Duration = dur
	}
	if p.DismissOnClick != nil {
		d.DismissOnClick = *p.DismissOnClick
	}
	for t, icon := range p.Icons {
		d.Icons[t] = icon
	}
}

// merge resolves the options of a toast of type t.
func (d Defaults) merge(t Type, opts []Option) Options {
	o := Options{
		Position:       d.Position,
		Duration:       d.Duration,
		DismissOnClick: d.DismissOnClick,
		Icon:           d.Icons[t],
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
