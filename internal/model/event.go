package model

import (
	"errors"
	"fmt"
	"strings"
)

// EventKind distinguishes inbound event kinds.
type EventKind string

const (
	// EventCommand is a slash-style command such as the attendance or report command.
	EventCommand EventKind = "command"
	// EventLocation carries a shared geolocation.
	EventLocation EventKind = "location"
	// EventText is any free-text message that is not a command.
	EventText EventKind = "text"
)

// Event is one inbound message from a chat transport.
type Event struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Kind        EventKind `json:"kind"`
	Command     string    `json:"command,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Text        string    `json:"text,omitempty"`
}

// ErrInvalidEvent is wrapped by every error returned from Event.Validate.
var ErrInvalidEvent = errors.New("invalid event")

// Validate checks the fields required by the event's kind.
func (e Event) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}

	switch e.Kind {
	case EventCommand:
		if CommandName(e.Command) == "" {
			return fmt.Errorf("%w: command is required for command events", ErrInvalidEvent)
		}
	case EventLocation:
		if e.Location == nil {
			return fmt.Errorf("%w: location is required for location events", ErrInvalidEvent)
		}
	case EventText:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}

	return nil
}

// CommandName strips a leading slash and any "@botname" suffix and lowercases
// the result, so "/Presensi@my_bot" and "presensi" name the same command.
func CommandName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}
