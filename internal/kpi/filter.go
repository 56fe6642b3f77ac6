// Package kpi aggregates dashboard metrics over a filtered chat set.
package kpi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
)

// ErrInvertedRange is returned when a range ends before it starts.
var ErrInvertedRange = errors.New("date range end is before start")

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time // any instant on the first day
	End   time.Time // any instant on the last day
}

// NewDateRange parses yyyy-mm-dd bounds in the parser's location.
func NewDateRange(p *dates.Parser, start, end string) (*DateRange, error) {
	s, err := p.ParseDay(start)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	e, err := p.ParseDay(end)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if e.Before(s) {
		return nil, ErrInvertedRange
	}
	return &DateRange{Start: s, End: e}, nil
}

// bounds returns [start 00:00:00, end 23:59:59] in loc.
func (r DateRange) bounds(loc *time.Location) (time.Time, time.Time) {
	s := r.Start.In(loc)
	e := r.End.In(loc)
	lo := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	hi := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, loc)
	return lo, hi
}

// Filter selects the chats a query covers. The zero value keeps everything.
type Filter struct {
	Range   *DateRange
	Ignored []string
}

// ParseIgnored splits a comma-separated list of chat ids, dropping blanks.
func ParseIgnored(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Apply drops ignored chats and, when a range is set, chats whose last
// activity is unparsable or outside the range.
func Apply(chats []conversation.Chat, f Filter, p *dates.Parser) []conversation.Chat {
	ignored := make(map[string]bool, len(f.Ignored))
	for _, id := range f.Ignored {
		ignored[id] = true
	}

	var lo, hi time.Time
	if f.Range != nil {
		lo, hi = f.Range.bounds(p.Location())
	}

	out := make([]conversation.Chat, 0, len(chats))
	for _, c := range chats {
		if ignored[c.ChatID] {
			continue
		}
		if f.Range != nil {
			last := p.Parse(c.Response.LastActivity)
			if !last.Valid || last.Time.Before(lo) || last.Time.After(hi) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
