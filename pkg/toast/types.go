package toast

import (
	"errors"
	"fmt"
	"strings"
)

// Type represents the toast notification type.
type Type string

const (
	TypeDefault Type = "default"
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeLoading Type = "loading"
)

// Types lists every toast type in declaration order.
var Types = []Type{TypeDefault, TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeLoading}

// ErrUnknownType is returned by ParseType for names outside Types.
var ErrUnknownType = errors.New("toast: unknown type")

// ParseType converts a type name into a Type.
// An empty name yields TypeDefault.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeDefault, nil
	}
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Position is the screen anchor a renderer places a toast at.
type Position string

const (
	TopStart     Position = "top-start"
	TopCenter    Position = "top-center"
	TopEnd       Position = "top-end"
	MiddleStart  Position = "middle-start"
	MiddleCenter Position = "middle-center"
	MiddleEnd    Position = "middle-end"
	BottomStart  Position = "bottom-start"
	BottomCenter Position = "bottom-center"
	BottomEnd    Position = "bottom-end"
)

// Positions lists the nine anchors, row by row.
var Positions = []Position{
	TopStart, TopCenter, TopEnd,
	MiddleStart, MiddleCenter, MiddleEnd,
	BottomStart, BottomCenter, BottomEnd,
}

// ErrUnknownPosition is returned by ParsePosition for names outside Positions.
var ErrUnknownPosition = errors.New("toast: unknown position")

// ParsePosition converts an anchor name into a Position.
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// Message is the content of a toast: either plain text or an opaque
// renderable handle that only the rendering layer understands.
type Message struct {
	text   string
	handle any
}

// Text creates a plain text message.
func Text(s string) Message {
	return Message{text: s}
}

// Textf creates a plain text message from a format string.
func Textf(format string, args ...any) Message {
	return Message{text: fmt.Sprintf(format, args...)}
}

// Renderable creates a message backed by a renderer-specific handle,
// such as a component factory.
func Renderable(handle any) Message {
	return Message{handle: handle}
}

// IsText reports whether the message is plain text.
func (m Message) IsText() bool {
	return m.handle == nil
}

// Text returns the text content. It is empty for renderable messages.
func (m Message) Text() string {
	return m.text
}

// Handle returns the renderable handle, or nil for text messages.
func (m Message) Handle() any {
	return m.handle
}

// IsZero reports whether the message carries no content at all.
func (m Message) IsZero() bool {
	return m.handle == nil && m.text == ""
}

// String returns the text, or a placeholder describing the handle.
func (m Message) String() string {
	if m.IsText() {
		return m.text
	}
	return fmt.Sprintf("<renderable %T>", m.handle)
}

// IconKind discriminates the Icon variants.
type IconKind int

const (
	// IconNone means no icon is rendered.
	IconNone IconKind = iota
	// IconBuiltin names one of the icons shipped with the renderer.
	IconBuiltin
	// IconURL points at an image.
	IconURL
	// IconComponent is a renderer-specific component handle.
	IconComponent
)

func (k IconKind) String() string {
	switch k {
	case IconBuiltin:
		return "builtin"
	case IconURL:
		return "url"
	case IconComponent:
		return "component"
	default:
		return "none"
	}
}

// Icon is an opaque handle to a renderable icon. The zero value is no icon.
type Icon struct {
	kind   IconKind
	ref    string
	handle any
}

// Builtin refers to a named icon provided by the renderer.
func Builtin(name string) Icon {
	return Icon{kind: IconBuiltin, ref: name}
}

// URLIcon refers to an icon image by URL.
func URLIcon(url string) Icon {
	return Icon{kind: IconURL, ref: url}
}

// ComponentIcon wraps a renderer component used as icon.
func ComponentIcon(handle any) Icon {
	if handle == nil {
		return Icon{}
	}
	return Icon{kind: IconComponent, handle: handle}
}

// Built-in icons used by the default options.
var (
	InfoIcon    = Builtin("info")
	SuccessIcon = Builtin("success")
	WarningIcon = Builtin("warning")
	ErrorIcon   = Builtin("error")
	LoadingIcon = Builtin("loading")
)

// ErrInvalidIcon is returned by ParseIcon for malformed icon strings.
var ErrInvalidIcon = errors.New("toast: invalid icon")

// ParseIcon converts the String form of an icon back into an Icon.
// It accepts "builtin:<name>", "url:<address>", and "" or "none" for no
// icon. Component icons have no string form.
func ParseIcon(s string) (Icon, error) {
	if s == "" || s == "none" {
		return Icon{}, nil
	}
	kind, ref, ok := strings.Cut(s, ":")
	if !ok || ref == "" {
		return Icon{}, fmt.Errorf("%w: %q", ErrInvalidIcon, s)
	}
	switch kind {
	case "builtin":
		return Builtin(ref), nil
	case "url":
		return URLIcon(ref), nil
	default:
		return Icon{}, fmt.Errorf("%w: %q", ErrInvalidIcon, s)
	}
}

// Kind returns the icon variant.
func (i Icon) Kind() IconKind {
	return i.kind
}

// Ref returns the builtin name or URL. It is empty for other kinds.
func (i Icon) Ref() string {
	return i.ref
}

// Handle returns the component handle for IconComponent icons.
func (i Icon) Handle() any {
	return i.handle
}

// IsZero reports whether no icon is set.
func (i Icon) IsZero() bool {
	return i.kind == IconNone
}

// String renders the icon as "kind:ref" for logs and wire payloads.
func (i Icon) String() string {
	switch i.kind {
	case IconBuiltin, IconURL:
		return i.kind.String() + ":" + i.ref
	case IconComponent:
		return fmt.Sprintf("component:%T", i.handle)
	default:
		return ""
	}
}

// Equal reports whether two icons refer to the same thing. Component
// handles are compared with ==, so they must be comparable.
func (i Icon) Equal(o Icon) bool {
	if i.kind != o.kind || i.ref != o.ref {
		return false
	}
	if i.kind == IconComponent {
		return i.handle == o.handle
	}
	return true
}

// Toast is an active notification record.
type Toast struct {
	ID      int
	Message Message
	Type    Type
	Options Options
}
