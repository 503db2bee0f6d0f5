package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleStore implements EventStore over the Google Calendar v3 API using a
// service account
type GoogleStore struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleStore authenticates with the service account key JSON
func NewGoogleStore(ctx context.Context, serviceAccountKey, calendarID string, opts ...option.ClientOption) (*GoogleStore, error) {
	if serviceAccountKey != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountKey)))
	}
	opts = append(opts, option.WithScopes(gcal.CalendarScope))

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleStore{svc: svc, calendarID: calendarID}, nil
}

// Busy lists single events overlapping [from, to]
func (g *GoogleStore) Busy(ctx context.Context, from, to time.Time) ([]Interval, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	busy := make([]Interval, 0, len(resp.Items))
	for _, item := range resp.Items {
		start, err := parseEventTime(item.Start)
		if err != nil {
			continue
		}
		end, err := parseEventTime(item.End)
		if err != nil {
			continue
		}
		busy = append(busy, Interval{Start: start, End: end})
	}
	return busy, nil
}

// Insert creates the event with the client as attendee and sends invitations
func (g *GoogleStore) Insert(ctx context.Context, ev Event) (*models.BookingResult, error) {
	body := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.TimeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.TimeZone},
		Attendees: []*gcal.EventAttendee{
			{Email: ev.AttendeeEmail, DisplayName: ev.AttendeeName},
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, body).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return &models.BookingResult{EventID: created.Id, EventLink: created.HtmlLink}, nil
}

// Get fetches one event
func (g *GoogleStore) Get(ctx context.Context, eventID string) (*Event, error) {
	item, err := g.svc.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err)
	}

	ev := &Event{ID: item.Id, Summary: item.Summary, Description: item.Description}
	if item.Start != nil {
		ev.TimeZone = item.Start.TimeZone
		if item.Start.DateTime != "" {
			ev.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		}
	}
	if item.End != nil && item.End.DateTime != "" {
		ev.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	return ev, nil
}

// Move updates the event's start and end, keeping every other field
func (g *GoogleStore) Move(ctx context.Context, eventID string, start, end time.Time) (string, error) {
	item, err := g.svc.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return "", mapGoogleError(err)
	}

	tz := "America/Denver"
	if item.Start != nil && item.Start.TimeZone != "" {
		tz = item.Start.TimeZone
	}
	item.Start = &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tz}
	item.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tz}

	updated, err := g.svc.Events.Update(g.calendarID, eventID, item).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", mapGoogleError(err)
	}
	return updated.Id, nil
}

// Delete removes the event and notifies attendees
func (g *GoogleStore) Delete(ctx context.Context, eventID string) error {
	err := g.svc.Events.Delete(g.calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	return mapGoogleError(err)
}

func parseEventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, errors.New("missing event time")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	// all-day events only carry a date
	return time.Parse("2006-01-02", dt.Date)
}

func mapGoogleError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return domain.NewNotFoundError("Event")
	}
	return domain.NewGatewayError("calendar", err)
}
