package core

import "fmt"

// EventKind enumerates the provider callbacks the normalizer subscribes to.
type EventKind string

const (
	EventWarning            EventKind = "warning"
	EventError              EventKind = "error"
	EventEnterRoom          EventKind = "enter_room"
	EventExitRoom           EventKind = "exit_room"
	EventFirstVideoFrame    EventKind = "first_video_frame"
	EventRemoteUserEnter    EventKind = "remote_user_enter"
	EventUserVideoAvailable EventKind = "user_video_available"
)

// ExitReason is the provider's room-exit reason code. The provider contract
// documents exactly three values; anything else maps to ExitReasonUnknown.
type ExitReason int

const (
	ExitReasonSelf ExitReason = iota
	ExitReasonKicked
	ExitReasonDissolved
	ExitReasonUnknown
)

func ExitReasonFromCode(code int) ExitReason {
	switch code {
	case 0:
		return ExitReasonSelf
	case 1:
		return ExitReasonKicked
	case 2:
		return ExitReasonDissolved
	default:
		return ExitReasonUnknown
	}
}

func (r ExitReason) String() string {
	switch r {
	case ExitReasonSelf:
		return "left room voluntarily"
	case ExitReasonKicked:
		return "kicked by server"
	case ExitReasonDissolved:
		return "room dissolved"
	default:
		return "unknown reason"
	}
}

// Event is the normalized payload delivered to handlers. Only the fields
// meaningful for the kind are set.
type Event struct {
	Kind EventKind
	// Code carries warning/error codes, the enter-room result (latency in ms,
	// negative on failure) and the raw exit-room reason.
	Code int
	// Message is the provider's human-readable detail, if any.
	Message string
	// UserID identifies the remote user for remote-user events.
	UserID string
	// Available reports track availability for EventUserVideoAvailable.
	Available bool
}

type EventHandler func(Event)

func (e Event) String() string {
	return fmt.Sprintf("%s code=%d user=%q", e.Kind, e.Code, e.UserID)
}
