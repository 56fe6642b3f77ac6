// Package rollup buckets the chat set into calendar periods and compares
// response quality across them.
package rollup

import (
	"fmt"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
	"github.com/MikeSquared-Agency/leadlens/internal/latency"
)

// Period is the calendar unit of a comparison.
type Period string

const (
	Week  Period = "week"
	Month Period = "month"
)

// ParsePeriod accepts "week" or "month"; empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", Month:
		return Month, nil
	case Week:
		return Week, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Business hours are [businessStart, businessEnd) of the inbound local hour.
const (
	businessStart = 8
	businessEnd   = 18
	fastMinutes   = 15
)

// Trend compares a row's average response with the previous row.
type Trend string

const (
	TrendNeutral Trend = "neutral"
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
)

// Row is one period of the comparison.
type Row struct {
	Period          string  `json:"period"`
	Leads           int     `json:"leads"`
	AvgResp         int     `json:"avg_resp"`
	AvgBusinessResp int     `json:"avg_business_resp"`
	FastRate        float64 `json:"fast_rate"`
	GhostingRate    float64 `json:"ghosting_rate"`
	Trend           Trend   `json:"trend"`
}

type bucket struct {
	start    time.Time
	label    string
	chats    map[string]bool
	ghosted  int
	all      []int
	business []int
	fast     int
}

// Compare builds one row per period. A chat is represented in every period
// holding at least one of its resolved messages; response events belong to the
// period of their inbound message. Unresolved timestamps are ignored.
func Compare(chats []conversation.Chat, period Period, p *dates.Parser) []Row {
	loc := p.Location()
	buckets := make(map[string]*bucket)

	get := func(t time.Time) *bucket {
		start, label := periodOf(t.In(loc), period)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{start: start, label: label, chats: make(map[string]bool)}
			buckets[label] = b
		}
		return b
	}

	for _, c := range chats {
		ghosted := kpi.IsGhosted(c)
		for _, m := range c.Messages {
			if !m.Timestamp.Valid {
				continue
			}
			b := get(m.Timestamp.Time)
			if b.chats[c.ChatID] {
				continue
			}
			b.chats[c.ChatID] = true
			if ghosted {
				b.ghosted++
			}
		}
		for _, e := range latency.Events(c.Messages) {
			b := get(e.Inbound.Time)
			b.all = append(b.all, e.Minutes)
			if h := e.Inbound.Hour(loc); h >= businessStart && h < businessEnd {
				b.business = append(b.business, e.Minutes)
			}
			if e.Minutes < fastMinutes {
				b.fast++
			}
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })

	rows := make([]Row, 0, len(ordered))
	for i, b := range ordered {
		row := Row{
			Period:          b.label,
			Leads:           len(b.chats),
			AvgResp:         latency.Average(b.all),
			AvgBusinessResp: latency.Average(b.business),
			FastRate:        kpi.Percent(b.fast, len(b.all)),
			GhostingRate:    kpi.Percent(b.ghosted, len(b.chats)),
			Trend:           TrendNeutral,
		}
		if i > 0 {
			row.Trend = TrendDown
			if row.AvgResp < rows[i-1].AvgResp {
				row.Trend = TrendUp
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// periodOf returns the local start and label of t's period. Weeks are ISO
// weeks starting Monday.
func periodOf(t time.Time, period Period) (time.Time, string) {
	if period == Week {
		year, week := t.ISOWeek()
		offset := (int(t.Weekday()) + 6) % 7
		day := t.AddDate(0, 0, -offset)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
		return start, fmt.Sprintf("%d-W%02d", year, week)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.Format("2006-01")
}
