// Package dates resolves the heterogeneous date strings found in chat exports.
package dates

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// strictLayout is the export format used by most chat backups.
	strictLayout = "01-02-2006 15:04:05"
	// shortLayout is what spreadsheet re-saves tend to produce.
	shortLayout = "02/01/06 15:04"

	// DayLayout keys day buckets and date-range query parameters.
	DayLayout = "2006-01-02"
)

// Instant is a resolved point in time, or the explicit "unparsed" marker
// when Valid is false. The zero value is unparsed.
type Instant struct {
	Time  time.Time
	Valid bool
}

// Unparsed is the marker returned for strings no layout accepts.
var Unparsed = Instant{}

// Resolved wraps t as a valid Instant.
func Resolved(t time.Time) Instant {
	return Instant{Time: t, Valid: true}
}

// Before orders instants with unparsed values ahead of every resolved one.
// Two unparsed instants are equal.
func (i Instant) Before(o Instant) bool {
	if !i.Valid {
		return o.Valid
	}
	if !o.Valid {
		return false
	}
	return i.Time.Before(o.Time)
}

// Hour returns the wall-clock hour in loc. Callers must check Valid first.
func (i Instant) Hour(loc *time.Location) int {
	return i.Time.In(loc).Hour()
}

// Day returns the yyyy-mm-dd key of the instant in loc.
func (i Instant) Day(loc *time.Location) string {
	return i.Time.In(loc).Format(DayLayout)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time.Format(time.RFC3339Nano))
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Unparsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*i = Resolved(t)
	return nil
}

// Parser resolves raw strings in a fixed location. Wall-clock strings without
// an offset are interpreted in that location.
type Parser struct {
	loc *time.Location
}

// NewParser returns a Parser for loc; nil means time.Local.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc}
}

// Location is the zone wall-clock values are resolved and reported in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse tries the strict export layout, then a generic parse, then the short
// day-first layout, and stops at the first success. It never fails: unknown
// input yields Unparsed.
//
// The generic step reads slash dates month-first, so a day-first string whose
// day is 12 or less resolves with day and month swapped.
func (p *Parser) Parse(raw string) Instant {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unparsed
	}
	if t, err := time.ParseInLocation(strictLayout, s, p.loc); err == nil {
		return Resolved(t)
	}
	if t, err := dateparse.ParseIn(s, p.loc); err == nil {
		return Resolved(t)
	}
	if t, err := time.ParseInLocation(shortLayout, s, p.loc); err == nil {
		return Resolved(t)
	}
	return Unparsed
}

// ParseDay parses a yyyy-mm-dd value as midnight in the parser's location.
func (p *Parser) ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, strings.TrimSpace(s), p.loc)
}
