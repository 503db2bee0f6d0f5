package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLead() *models.Lead {
	created := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	amount := int64(28000)
	duration := 42
	outcome := models.OutcomeCompletedOffer
	return &models.Lead{
		ID:               "lead-1",
		FirstName:        "Dana",
		LastName:         models.StringPtr("Reyes"),
		Phone:            "+14035550100",
		Email:            models.StringPtr(`dana "the boss"@example.com`),
		ConsentGiven:     true,
		ConsentTimestamp: models.TimePtr(created),
		CallStatus:       models.CallCompleted,
		CallSID:          models.StringPtr("CA1"),
		CallDuration:     &duration,
		SMSStatus:        models.SMSSent,
		SMSOutcome:       &outcome,
		SMSSID:           models.StringPtr("SM1"),
		SMSSentAt:        models.TimePtr(created.Add(time.Minute)),
		PaymentStatus:    models.PaymentPaid,
		AmountPaid:       &amount,
		PaidAt:           models.TimePtr(created.Add(time.Hour)),
		CreatedAt:        created,
		UpdatedAt:        created.Add(time.Hour),
	}
}

func TestLeadRow(t *testing.T) {
	row := LeadRow(sampleLead())

	require.Len(t, row, len(LeadHeaders))
	assert.Equal(t, "Dana", row[1])
	assert.Equal(t, "Reyes", row[2])
	assert.Equal(t, "Yes", row[5])
	assert.Equal(t, "2026-03-02T16:00:00Z", row[6])
	assert.Equal(t, "42", row[9])
	assert.Equal(t, "completed_offer", row[11])
	assert.Equal(t, "280.00", row[15])
	assert.Equal(t, "No", row[17])
	assert.Equal(t, "", row[18])
}

func TestLeadRow_EmptyOptionals(t *testing.T) {
	row := LeadRow(&models.Lead{ID: "x", FirstName: "Sam", Phone: "+14035550101"})

	assert.Equal(t, "", row[2])
	assert.Equal(t, "", row[9])
	assert.Equal(t, "", row[15])
	assert.Equal(t, "No", row[5])
}

func TestWriteLeads_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeads(&buf, FormatCSV, []*models.Lead{sampleLead()}))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(LeadHeaders, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"lead-1","Dana","Reyes","+14035550100","dana ""the boss""@example.com","Yes"`))
	assert.Contains(t, lines[1], `"280.00"`)
}

func TestWriteContacts_CSV(t *testing.T) {
	var buf bytes.Buffer
	contacts := []*models.ContactLead{{
		ID: "c1", Name: "Sam", Email: "sam@example.com", Organization: "Acme",
		Objective: "Automation", Message: "Hi, there", IP: "unknown",
		CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, WriteContacts(&buf, FormatCSV, contacts))

	assert.Equal(t,
		"ID,Name,Email,Organization,Objective,Message,Created At,IP\n"+
			`"c1","Sam","sam@example.com","Acme","Automation","Hi, there","2026-03-02T00:00:00Z","unknown"`,
		buf.String())
}

func TestWriteLeads_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeads(&buf, FormatXLSX, []*models.Lead{sampleLead()}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, LeadHeaders, rows[0])
	assert.Equal(t, "lead-1", rows[1][0])
	assert.Equal(t, "280.00", rows[1][15])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.True(t, domain.IsValidation(err))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "ai-intensive-leads-2026-03-02.csv", Filename("ai-intensive-leads", FormatCSV, now))
	assert.Equal(t, "leads-2026-03-02.xlsx", Filename("leads", FormatXLSX, now))
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}
