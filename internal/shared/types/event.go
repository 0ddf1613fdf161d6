package types

import "strings"

// EventKind identifies the host event that delivered a frame
type EventKind string

const (
	EventWindowStateChanged EventKind = "window_state_changed"
	EventViewClicked        EventKind = "view_clicked"
	EventViewTextChanged    EventKind = "view_text_changed"
	EventViewFocused        EventKind = "view_focused"
	EventContentChanged     EventKind = "content_changed"
	EventOther              EventKind = "other"
)

// Important reports whether the event requests an immediate capture
func (k EventKind) Important() bool {
	switch k {
	case EventWindowStateChanged, EventViewClicked, EventViewTextChanged, EventViewFocused:
		return true
	default:
		return false
	}
}

// ParseEventKind maps a host event name onto an EventKind.
// Unknown names map to EventOther.
func ParseEventKind(s string) EventKind {
	switch k := EventKind(strings.ToLower(strings.TrimSpace(s))); k {
	case EventWindowStateChanged, EventViewClicked, EventViewTextChanged,
		EventViewFocused, EventContentChanged:
		return k
	case "":
		return EventContentChanged
	default:
		return EventOther
	}
}
