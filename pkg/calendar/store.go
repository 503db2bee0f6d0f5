package calendar

import (
	"context"
	"time"

	"github.com/jordanlanch/ironoak/pkg/models"
)

// Interval is a busy window on the calendar
type Interval struct {
	Start time.Time
	End   time.Time
}

// overlaps uses the same three-way test the booking flow has always used:
// a slot conflicts when it starts inside, ends inside, or swallows an event.
func (i Interval) overlaps(start, end time.Time) bool {
	return (!start.Before(i.Start) && start.Before(i.End)) ||
		(end.After(i.Start) && !end.After(i.End)) ||
		(!start.After(i.Start) && !end.Before(i.End))
}

// Event is the subset of a calendar event the service reads and writes
type Event struct {
	ID            string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	TimeZone      string
	AttendeeEmail string
	AttendeeName  string
}

// EventStore is the calendar backend
type EventStore interface {
	Busy(ctx context.Context, from, to time.Time) ([]Interval, error)
	Insert(ctx context.Context, ev Event) (*models.BookingResult, error)
	Get(ctx context.Context, eventID string) (*Event, error)
	Move(ctx context.Context, eventID string, start, end time.Time) (string, error)
	Delete(ctx context.Context, eventID string) error
}
