package server

import (
	"fmt"
	"time"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

// ToastJSON is the wire form of a toast.
type ToastJSON struct {
	ID   int    `json:"id"`
	Type string `json:"type"`

	// Message holds text content. Renderable messages cannot cross the
	// wire and are described by Component instead.
	Message   string `json:"message,omitempty"`
	Component string `json:"component,omitempty"`

	Position       string         `json:"position"`
	DurationMs     int64          `json:"durationMs"`
	DismissOnClick bool           `json:"dismissOnClick"`
	Icon           string         `json:"icon,omitempty"`
	Props          map[string]any `json:"props,omitempty"`
}

// DefaultsJSON is the wire form of the store defaults.
type DefaultsJSON struct {
	Position       string            `json:"position"`
	DurationMs     int64             `json:"durationMs"`
	DismissOnClick bool              `json:"dismissOnClick"`
	Icons          map[string]string `json:"icons"`
}

// Frame is one message on the /ws stream.
type Frame struct {
	Seq uint64 `json:"seq"`

	// Kind is "snapshot" for the first frame, then the change kind.
	Kind string `json:"kind"`

	// Toast is the created, updated or removed toast.
	Toast *ToastJSON `json:"toast,omitempty"`

	// Removed lists the ids dropped by a clear.
	Removed []int `json:"removed,omitempty"`

	// Toasts is the full list after the change.
	Toasts []ToastJSON `json:"toasts"`
}

// FrameSnapshot is the Kind of the first frame sent to a stream client.
const FrameSnapshot = "snapshot"

// ToastRequest is the body of POST /api/toasts and PUT /api/toasts/{id}.
// Unset optional fields fall back to the store defaults.
type ToastRequest struct {
	Type           string         `json:"type"`
	Message        string         `json:"message"`
	Position       *string        `json:"position,omitempty"`
	DurationMs     *int64         `json:"durationMs,omitempty"`
	DismissOnClick *bool          `json:"dismissOnClick,omitempty"`
	Icon           *string        `json:"icon,omitempty"`
	Props          map[string]any `json:"props,omitempty"`
}

// DefaultsRequest is the body of PATCH /api/defaults.
type DefaultsRequest struct {
	Position       *string           `json:"position,omitempty"`
	DurationMs     *int64            `json:"durationMs,omitempty"`
	DismissOnClick *bool             `json:"dismissOnClick,omitempty"`
	Icons          map[string]string `json:"icons,omitempty"`
}

// clientMessage is sent by stream clients, e.g. when a toast is clicked.
type clientMessage struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

func encodeToast(t toast.Toast) ToastJSON {
	out := ToastJSON{
		ID:             t.ID,
		Type:           string(t.Type),
		Position:       string(t.Options.Position),
		DurationMs:     t.Options.Duration.Milliseconds(),
		DismissOnClick: t.Options.DismissOnClick,
		Icon:           t.Options.Icon.String(),
		Props:          t.Options.Props,
	}
	if t.Message.IsText() {
		out.Message = t.Message.Text()
	} else {
		out.Component = fmt.Sprintf("%T", t.Message.Handle())
	}
	return out
}

func encodeToasts(list []toast.Toast) []ToastJSON {
	out := make([]ToastJSON, len(list))
	for i, t := range list {
		out[i] = encodeToast(t)
	}
	return out
}

func encodeDefaults(d toast.Defaults) DefaultsJSON {
	out := DefaultsJSON{
		Position:       string(d.Position),
		DurationMs:     d.Duration.Milliseconds(),
		DismissOnClick: d.DismissOnClick,
		Icons:          make(map[string]string, len(d.Icons)),
	}
	for typ, icon := range d.Icons {
		out.Icons[string(typ)] = icon.String()
	}
	return out
}

func encodeChange(ch toast.Change) Frame {
	f := Frame{
		Seq:    ch.Seq,
		Kind:   string(ch.Kind),
		Toasts: encodeToasts(ch.Toasts),
	}
	if ch.Kind == toast.ChangeCleared {
		f.Removed = make([]int, len(ch.Removed))
		for i, t := range ch.Removed {
			f.Removed[i] = t.ID
		}
	} else {
		t := encodeToast(ch.Toast)
		f.Toast = &t
	}
	return f
}

// decode validates the request and turns it into store arguments.
func (req ToastRequest) decode() (toast.Message, toast.Type, []toast.Option, error) {
	if req.Message == "" {
		return toast.Message{}, "", nil, errors.New("E204").
			WithDetail("message is required")
	}

	typ, err := toast.ParseType(req.Type)
	if err != nil {
		return toast.Message{}, "", nil, errors.New("E201").
			WithDetailf("%q is not a toast type", req.Type).
			WithSuggestion("Use default, info, success, warning, error or loading")
	}

	var opts []toast.Option
	if req.Position != nil {
		pos, err := toast.ParsePosition(*req.Position)
		if err != nil {
			return toast.Message{}, "", nil, errors.New("E202").
				WithDetailf("%q is not a position", *req.Position)
		}
		opts = append(opts, toast.WithPosition(pos))
	}
	if req.DurationMs != nil {
		d, err := durationMs(*req.DurationMs)
		if err != nil {
			return toast.Message{}, "", nil, err
		}
		opts = append(opts, toast.WithDuration(d))
	}
	if req.DismissOnClick != nil {
		opts = append(opts, toast.WithDismissOnClick(*req.DismissOnClick))
	}
	if req.Icon != nil {
		icon, err := parseIcon(*req.Icon)
		if err != nil {
			return toast.Message{}, "", nil, err
		}
		opts = append(opts, toast.WithIcon(icon))
	}
	if len(req.Props) > 0 {
		opts = append(opts, toast.WithProps(req.Props))
	}

	return toast.Text(req.Message), typ, opts, nil
}

func (req DefaultsRequest) decode() (toast.DefaultsPatch, error) {
	var patch toast.DefaultsPatch
	if req.Position != nil {
		pos, err := toast.ParsePosition(*req.Position)
		if err != nil {
			return patch, errors.New("E202").
				WithDetailf("%q is not a position", *req.Position)
		}
		patch.Position = &pos
	}
	if req.DurationMs != nil {
		d, err := durationMs(*req.DurationMs)
		if err != nil {
			return patch, err
		}
		patch.Duration = &d
	}
	if req.DismissOnClick != nil {
		v := *req.DismissOnClick
		patch.DismissOnClick = &v
	}
	if len(req.Icons) > 0 {
		patch.Icons = make(map[toast.Type]toast.Icon, len(req.Icons))
		for name, ref := range req.Icons {
			typ, err := toast.ParseType(name)
			if err != nil {
				return patch, errors.New("E201").
					WithDetailf("icons has unknown type %q", name)
			}
			icon, err := parseIcon(ref)
			if err != nil {
				return patch, err
			}
			patch.Icons[typ] = icon
		}
	}
	return patch, nil
}

func durationMs(ms int64) (time.Duration, error) {
	if ms < 0 {
		return 0, errors.New("E203").
			WithDetailf("durationMs must not be negative, got %d", ms).
			WithSuggestion("Use 0 for a toast that stays until dismissed")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseIcon(s string) (toast.Icon, error) {
	icon, err := toast.ParseIcon(s)
	if err != nil {
		return toast.Icon{}, errors.New("E207").
			WithDetailf("%q is not an icon", s).
			WithSuggestion(`Use "builtin:<name>", "url:<address>" or "none"`)
	}
	return icon, nil
}
