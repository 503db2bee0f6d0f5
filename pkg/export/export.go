// Package export renders lead partitions as CSV or XLSX downloads with a
// fixed column order.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Format is a download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"

	sheetName = "Leads"
)

// LeadHeaders is the column order of the ai-leads export
var LeadHeaders = []string{
	"ID",
	"First Name",
	"Last Name",
	"Phone",
	"Email",
	"Consent Given",
	"Consent Timestamp",
	"Call Status",
	"Call SID",
	"Call Duration",
	"SMS Status",
	"SMS Outcome",
	"SMS SID",
	"SMS Sent At",
	"Payment Status",
	"Amount Paid",
	"Paid At",
	"Opted Out",
	"Opted Out At",
	"Created At",
	"Updated At",
}

// ContactHeaders is the column order of the contact-form export
var ContactHeaders = []string{"ID", "Name", "Email", "Organization", "Objective", "Message", "Created At", "IP"}

// ParseFormat accepts csv (the default) or xlsx
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid format %q: must be csv or xlsx", s))
}

// ContentType is the response media type for f
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename builds "<prefix>-YYYY-MM-DD.<ext>"
func Filename(prefix string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format("2006-01-02"), f)
}

// LeadRow flattens a lead in LeadHeaders order. Absent values are empty
// cells; the amount is rendered in dollars with two decimals.
func LeadRow(l *models.Lead) []string {
	amount := ""
	if l.AmountPaid != nil && *l.AmountPaid != 0 {
		amount = formatCents(*l.AmountPaid)
	}
	duration := ""
	if l.CallDuration != nil && *l.CallDuration != 0 {
		duration = strconv.Itoa(*l.CallDuration)
	}
	outcome := ""
	if l.SMSOutcome != nil {
		outcome = string(*l.SMSOutcome)
	}

	return []string{
		l.ID,
		l.FirstName,
		str(l.LastName),
		l.Phone,
		str(l.Email),
		yesNo(l.ConsentGiven),
		timestamp(l.ConsentTimestamp),
		string(l.CallStatus),
		str(l.CallSID),
		duration,
		string(l.SMSStatus),
		outcome,
		str(l.SMSSID),
		timestamp(l.SMSSentAt),
		string(l.PaymentStatus),
		amount,
		timestamp(l.PaidAt),
		yesNo(l.OptedOut),
		timestamp(l.OptedOutAt),
		timestamp(&l.CreatedAt),
		timestamp(&l.UpdatedAt),
	}
}

// ContactRow flattens a contact inquiry in ContactHeaders order
func ContactRow(c *models.ContactLead) []string {
	return []string{c.ID, c.Name, c.Email, c.Organization, c.Objective, c.Message, timestamp(&c.CreatedAt), c.IP}
}

// WriteLeads renders leads in format f
func WriteLeads(w io.Writer, f Format, leads []*models.Lead) error {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, LeadRow(l))
	}
	return write(w, f, LeadHeaders, rows)
}

// WriteContacts renders contact inquiries in format f
func WriteContacts(w io.Writer, f Format, contacts []*models.ContactLead) error {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, ContactRow(c))
	}
	return write(w, f, ContactHeaders, rows)
}

func write(w io.Writer, f Format, headers []string, rows [][]string) error {
	if f == FormatXLSX {
		return writeXLSX(w, headers, rows)
	}
	return writeCSV(w, headers, rows)
}

// writeCSV quotes every data cell, doubling embedded quotes. The header
// line is left bare.
func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeXLSX(w io.Writer, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := setRow(f, 1, headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func timestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
