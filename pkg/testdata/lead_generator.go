package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/models"
)

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Count          int
	InquiryType    models.InquiryType
	CreatedWithin  time.Duration // leads are spread over [now-CreatedWithin, now]
	LastNameChance float64       // 0.0-1.0
	EmailChance    float64
	SentChance     float64 // probability the follow-up text already went out
	PaidChance     float64
	OptOutChance   float64
	Now            time.Time
}

// AreaCodes are the Alberta area codes used for generated phones
var AreaCodes = []string{"403", "587", "780", "825", "368"}

var objectives = []string{
	"Automate inventory workflows",
	"AI training for staff",
	"Replace spreadsheets with a CRM",
	"Customer support chatbot",
	"Scheduling and dispatch",
}

// GeneratePhone returns a NANP number in E.164 form
func GeneratePhone() string {
	area := AreaCodes[rand.Intn(len(AreaCodes))]
	// exchange and line must not start with 0 or 1
	return fmt.Sprintf("+1%s%d%02d%04d", area, 2+rand.Intn(8), rand.Intn(100), rand.Intn(10000))
}

// GenerateLead creates a single lead with realistic data
func GenerateLead(config LeadGeneratorConfig) *models.Lead {
	now := config.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	created := now
	if config.CreatedWithin > 0 {
		created = now.Add(-time.Duration(rand.Int63n(int64(config.CreatedWithin))))
	}

	person := gofakeit.Person()
	lead := &models.Lead{
		ID:               uuid.NewString(),
		FirstName:        person.FirstName,
		Phone:            GeneratePhone(),
		InquiryType:      config.InquiryType,
		ConsentGiven:     true,
		ConsentTimestamp: models.TimePtr(created),
		CallStatus:       models.CallPending,
		SMSStatus:        models.SMSPending,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	if lead.InquiryType == "" {
		lead.InquiryType = models.InquiryAIIntensive
	}

	if rand.Float64() < config.LastNameChance {
		lead.LastName = models.StringPtr(person.LastName)
	}
	if rand.Float64() < config.EmailChance {
		email := fmt.Sprintf("%s.%s@%s", strings.ToLower(person.FirstName), strings.ToLower(person.LastName), gofakeit.DomainName())
		lead.Email = &email
	}

	if rand.Float64() < config.SentChance {
		outcome := models.OutcomeCompletedOffer
		lead.CallStatus = models.CallCompleted
		lead.SMSStatus = models.SMSSent
		lead.SMSOutcome = &outcome
		lead.SMSSID = models.StringPtr("SM" + strings.ReplaceAll(uuid.NewString(), "-", ""))
		lead.SMSSentAt = models.TimePtr(created.Add(5 * time.Minute))
	}
	if rand.Float64() < config.PaidChance {
		amount := int64(28000)
		lead.PaymentStatus = models.PaymentPaid
		lead.AmountPaid = &amount
		lead.PaidAt = models.TimePtr(created.Add(time.Hour))
	}
	if rand.Float64() < config.OptOutChance {
		lead.OptedOut = true
		lead.OptedOutAt = models.TimePtr(created.Add(2 * time.Hour))
	}

	return lead
}

// GenerateLeads creates multiple leads with the given config
func GenerateLeads(config LeadGeneratorConfig) []*models.Lead {
	leads := make([]*models.Lead, config.Count)
	for i := 0; i < config.Count; i++ {
		leads[i] = GenerateLead(config)
	}
	return leads
}

// GenerateFreshLeads returns count leads that have not been contacted yet
func GenerateFreshLeads(count int) []*models.Lead {
	return GenerateLeads(LeadGeneratorConfig{
		Count:          count,
		LastNameChance: 0.5,
		EmailChance:    0.7,
	})
}

// GenerateContactLead creates a contact-form inquiry
func GenerateContactLead() *models.ContactLead {
	return &models.ContactLead{
		ID:           uuid.NewString(),
		Name:         gofakeit.Name(),
		Email:        gofakeit.Email(),
		Organization: gofakeit.Company(),
		Objective:    objectives[rand.Intn(len(objectives))],
		Message:      gofakeit.Sentence(12),
		IP:           gofakeit.IPv4Address(),
		CreatedAt:    time.Now().UTC().Add(-time.Duration(rand.Intn(72)) * time.Hour),
	}
}

// GenerateContactLeads creates count contact-form inquiries
func GenerateContactLeads(count int) []*models.ContactLead {
	out := make([]*models.ContactLead, count)
	for i := range out {
		out[i] = GenerateContactLead()
	}
	return out
}

// LeadCreator is satisfied by the lead store
type LeadCreator interface {
	Create(ctx context.Context, lead *models.Lead) error
}

// InsertLeads writes leads one at a time, stopping at the first failure
func InsertLeads(ctx context.Context, store LeadCreator, leads []*models.Lead) error {
	for i, l := range leads {
		if err := store.Create(ctx, l); err != nil {
			return fmt.Errorf("failed to insert lead %d: %w", i, err)
		}
	}
	return nil
}
