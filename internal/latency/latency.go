// Package latency measures how fast the business answers inbound messages.
package latency

import (
	"math"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
)

// OutlierMinutes drops gaps of three days or more.
const OutlierMinutes = 4320

// Event is one inbound message answered directly by an outbound one.
type Event struct {
	Inbound dates.Instant
	Minutes int
}

// Events walks adjacent pairs in order and returns every retained response
// event. Pairs with an unparsed side and outliers are skipped.
func Events(msgs []conversation.Message) []Event {
	var events []Event
	for i := 0; i+1 < len(msgs); i++ {
		cur, next := msgs[i], msgs[i+1]
		if !cur.Inbound() || !next.Outbound() {
			continue
		}
		if !cur.Timestamp.Valid || !next.Timestamp.Valid {
			continue
		}
		minutes := wholeMinutes(cur.Timestamp, next.Timestamp)
		if minutes >= OutlierMinutes {
			continue
		}
		events = append(events, Event{Inbound: cur.Timestamp, Minutes: minutes})
	}
	return events
}

// Compute returns the response metrics of an ordered chat.
func Compute(msgs []conversation.Message) conversation.ResponseMetrics {
	events := Events(msgs)
	times := make([]int, len(events))
	for i, e := range events {
		times[i] = e.Minutes
	}

	m := conversation.ResponseMetrics{
		ResponseTimes:     times,
		AvgResponseTime:   Average(times),
		TotalInteractions: len(msgs),
	}
	if len(msgs) > 0 {
		m.LastActivity = msgs[len(msgs)-1].Date
	}
	return m
}

// Average is the rounded mean, or 0 for an empty slice.
func Average(minutes []int) int {
	if len(minutes) == 0 {
		return 0
	}
	total := 0
	for _, v := range minutes {
		total += v
	}
	return int(math.Round(float64(total) / float64(len(minutes))))
}

// wholeMinutes truncates toward zero and floors negative gaps at 0.
func wholeMinutes(start, end dates.Instant) int {
	minutes := int(end.Time.Sub(start.Time).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
