// Package calendar is the Scheduling Gateway: it computes free slots for each
// appointment type and books, cancels and reschedules events on Google Calendar.
package calendar

import (
	"fmt"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
)

const (
	slotStep      = 15 * time.Minute
	lookAheadDays = 7
	maxSlots      = 10
	displayLayout = "Monday, January 2, 3:04 PM MST"
)

// AppointmentConfig describes when an appointment type can be booked
type AppointmentConfig struct {
	Duration  time.Duration
	Days      []time.Weekday
	StartHour int
	EndHour   int
}

func (c AppointmentConfig) availableOn(d time.Weekday) bool {
	for _, day := range c.Days {
		if day == d {
			return true
		}
	}
	return false
}

// DefaultConfigs are the bookable appointment types. ai-intensive is sold
// through checkout and has no calendar slot.
var DefaultConfigs = map[models.InquiryType]AppointmentConfig{
	models.InquirySystems: {
		Duration:  15 * time.Minute,
		Days:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		StartHour: 9,
		EndHour:   16,
	},
	models.InquiryConsulting: {
		Duration:  30 * time.Minute,
		Days:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
		StartHour: 10,
		EndHour:   15,
	},
	models.InquiryEducation: {
		Duration:  15 * time.Minute,
		Days:      []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday},
		StartHour: 11,
		EndHour:   16,
	},
}

func invalidType(t models.InquiryType) error {
	return domain.NewValidationError(fmt.Sprintf("Invalid inquiry type: %s", t))
}
