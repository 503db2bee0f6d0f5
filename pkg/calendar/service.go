package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
)

// BookingParams is a validated booking request with a canonical phone
type BookingParams struct {
	InquiryType models.InquiryType
	Start       time.Time
	ClientName  string
	ClientEmail string
	ClientPhone string
	Message     string
}

// Service computes availability and manages bookings
type Service struct {
	store    EventStore
	configs  map[models.InquiryType]AppointmentConfig
	location *time.Location
	now      func() time.Time
}

// NewService creates a scheduling service in the given IANA timezone
func NewService(store EventStore, timezone string) (*Service, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Service{
		store:    store,
		configs:  DefaultConfigs,
		location: loc,
		now:      time.Now,
	}, nil
}

// SetClock overrides the current time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location returns the timezone bookings are displayed in
func (s *Service) Location() *time.Location {
	return s.location
}

// AvailableSlots returns up to ten free slots over the next week
func (s *Service) AvailableSlots(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error) {
	cfg, ok := s.configs[t]
	if !ok {
		return nil, invalidType(t)
	}

	now := s.now().In(s.location)
	horizon := now.AddDate(0, 0, lookAheadDays)

	busy, err := s.store.Busy(ctx, now, horizon)
	if err != nil {
		return nil, domain.NewGatewayError("calendar", err)
	}

	slots := make([]models.TimeSlot, 0, maxSlots)
	for d := 0; d <= lookAheadDays; d++ {
		day := now.AddDate(0, 0, d)
		if !cfg.availableOn(day.Weekday()) {
			continue
		}
		closing := time.Date(day.Year(), day.Month(), day.Day(), cfg.EndHour, 0, 0, 0, s.location)

		for hour := cfg.StartHour; hour < cfg.EndHour; hour++ {
			for minute := 0; minute < 60; minute += int(slotStep / time.Minute) {
				start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, s.location)
				end := start.Add(cfg.Duration)

				if !start.After(now) || end.After(closing) || conflicts(busy, start, end) {
					continue
				}

				slots = append(slots, models.TimeSlot{
					Start:   start.UTC(),
					End:     end.UTC(),
					Display: s.display(start),
				})
				if len(slots) == maxSlots {
					return slots, nil
				}
			}
		}
	}
	return slots, nil
}

// display formats t the way slots are read back to callers, e.g.
// "Monday, March 3, 9:00 AM MST"
func (s *Service) display(t time.Time) string {
	return t.In(s.location).Format(displayLayout)
}

// Book re-checks the window and creates the event. A conflict returns
// SLOT_UNAVAILABLE and nothing is written.
func (s *Service) Book(ctx context.Context, p BookingParams) (*models.BookingResult, error) {
	cfg, ok := s.configs[p.InquiryType]
	if !ok {
		return nil, invalidType(p.InquiryType)
	}

	start := p.Start
	end := start.Add(cfg.Duration)

	busy, err := s.store.Busy(ctx, start, end)
	if err != nil {
		return nil, domain.NewGatewayError("calendar", err)
	}
	if conflicts(busy, start, end) {
		return nil, domain.NewSlotUnavailableError()
	}

	display := p.InquiryType.DisplayName()
	message := p.Message
	if message == "" {
		message = "No message provided"
	}

	result, err := s.store.Insert(ctx, Event{
		Summary: fmt.Sprintf("%s - %s", display, p.ClientName),
		Description: fmt.Sprintf("Client: %s\nPhone: %s\nEmail: %s\nType: %s\n\nMessage: %s",
			p.ClientName, p.ClientPhone, p.ClientEmail, display, message),
		Start:         start,
		End:           end,
		TimeZone:      s.location.String(),
		AttendeeEmail: p.ClientEmail,
		AttendeeName:  p.ClientName,
	})
	if err != nil {
		return nil, domain.NewGatewayError("calendar", err)
	}
	return result, nil
}

// Cancel deletes the event and notifies attendees
func (s *Service) Cancel(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.NewValidationError("eventId is required")
	}
	return s.store.Delete(ctx, eventID)
}

// Reschedule moves the event to newStart keeping its length. Events without
// a timed start and end are treated as 30 minutes long. The new window must
// be free apart from the event itself.
func (s *Service) Reschedule(ctx context.Context, eventID string, newStart time.Time) (string, error) {
	if eventID == "" {
		return "", domain.NewValidationError("eventId is required")
	}

	existing, err := s.store.Get(ctx, eventID)
	if err != nil {
		return "", err
	}

	duration := 30 * time.Minute
	if !existing.Start.IsZero() && existing.End.After(existing.Start) {
		duration = existing.End.Sub(existing.Start)
	}

	newEnd := newStart.Add(duration)

	busy, err := s.store.Busy(ctx, newStart, newEnd)
	if err != nil {
		return "", domain.NewGatewayError("calendar", err)
	}
	for _, b := range busy {
		if b.Start.Equal(existing.Start) && b.End.Equal(existing.End) {
			continue
		}
		if b.overlaps(newStart, newEnd) {
			return "", domain.NewSlotUnavailableError()
		}
	}

	return s.store.Move(ctx, eventID, newStart, newEnd)
}

func conflicts(busy []Interval, start, end time.Time) bool {
	for _, b := range busy {
		if b.overlaps(start, end) {
			return true
		}
	}
	return false
}
