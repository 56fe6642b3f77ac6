// Package export serializes lead rows for spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
)

// Filename is the suggested download name.
const Filename = "leadlens_smart_leads.csv"

var header = []string{"name", "email", "phone", "score"}

// Exporter writes export rows, normalizing chat ids to E.164 phone numbers.
type Exporter struct {
	region string
}

// New returns an exporter that parses national numbers in region (e.g. "BO").
func New(region string) *Exporter {
	return &Exporter{region: strings.ToUpper(strings.TrimSpace(region))}
}

// NormalizePhone formats raw as E.164. If parsing fails or the number is not
// valid, it returns the trimmed input.
func (e *Exporter) NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, e.region)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// WriteCSV writes a header and one line per row.
func (e *Exporter) WriteCSV(w io.Writer, rows []kpi.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{r.Name, r.Email, e.NormalizePhone(r.Phone), strconv.Itoa(r.Score)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
