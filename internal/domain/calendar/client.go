package calendar

import (
	"context"
	"time"
)

// Event is a calendar entry with two reminder offsets.
type Event struct {
	Title              string
	Description        string
	Start              time.Time
	End                time.Time
	PopupMinutesBefore int
	EmailMinutesBefore int
}

// Client defines the calendar operations the reminder batch needs.
// This decouples the application logic from any specific calendar backend.
type Client interface {
	// CreateEvent creates the event and returns its identifier.
	CreateEvent(ctx context.Context, ev Event) (string, error)
}
