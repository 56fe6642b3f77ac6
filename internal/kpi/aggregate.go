package kpi

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
)

// DefaultContactName is used on export rows without a captured name.
const DefaultContactName = "Cliente"

var (
	ctaMarkers    = []string{"necesito", "?"}
	quoteTerms    = []string{"cotización"}
	locationTerms = []string{"ubicación", "dirección"}
	catalogTerms  = []string{"catálogo"}
)

// Night queries arrive at or after nightStart or before nightEnd, local time.
const (
	nightStart = 20
	nightEnd   = 7
)

// HourBucket counts inbound messages in one local hour.
type HourBucket struct {
	Hour  string `json:"hour"`
	Value int    `json:"value"`
}

// DayBucket counts messages per local day.
type DayBucket struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// LatencyBucket is one band of the response-time distribution.
type LatencyBucket struct {
	Label  string `json:"label"`
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

// Latency band indexes into Result.ResponseDistribution.
const (
	BandFast = iota
	BandGood
	BandMedium
	BandSlow
	BandCritical
)

// Contact is a high-value chat projected for the dashboard.
type Contact struct {
	ChatID       string                   `json:"chat_id"`
	Name         string                   `json:"name,omitempty"`
	Email        string                   `json:"email,omitempty"`
	NIT          string                   `json:"nit,omitempty"`
	ProjectType  string                   `json:"project_type,omitempty"`
	Score        int                      `json:"score"`
	FunnelStage  conversation.FunnelStage `json:"funnel_stage"`
	LastActivity string                   `json:"last_activity"`
	Messages     int                      `json:"messages"`
}

// ExportRow is one spreadsheet line for a chat with a captured email.
type ExportRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Score int    `json:"score"`
}

// Result is a point-in-time KPI snapshot over a filtered chat set.
type Result struct {
	TotalLeads     int     `json:"total_leads"`
	TotalMsgs      int     `json:"total_msgs"`
	LeadsCaptured  int     `json:"leads_captured"`
	EmailsCaptured int     `json:"emails_captured"`
	NITs           int     `json:"nits"`
	ActiveUsers    int     `json:"active_users"`
	HighValueCount int     `json:"high_value_count"`
	GhostingRate   float64 `json:"ghosting_rate"`
	AvgMsgsPerChat float64 `json:"avg_msgs_per_chat"`

	HourMap              []HourBucket    `json:"hour_map"`
	DailyData            []DayBucket     `json:"daily_data"`
	ResponseDistribution []LatencyBucket `json:"response_distribution"`
	HighValueContacts    []Contact       `json:"high_value_contacts"`
	Emails               []ExportRow     `json:"emails"`

	QuoteRequests    int `json:"quote_requests"`
	LocationRequests int `json:"location_requests"`
	CatalogRequests  int `json:"catalog_requests"`
	Impatience       int `json:"impatience"`
	NightQueries     int `json:"night_queries"`
}

// Aggregator computes KPIs with local hours and days in one location.
type Aggregator struct {
	parser *dates.Parser
}

func NewAggregator(p *dates.Parser) *Aggregator {
	return &Aggregator{parser: p}
}

// Compute filters chats and aggregates the result. An empty selection yields
// zero counts and 0% rates.
func (a *Aggregator) Compute(chats []conversation.Chat, f Filter) Result {
	return a.Aggregate(Apply(chats, f, a.parser))
}

// Aggregate computes the result over an already-filtered set.
func (a *Aggregator) Aggregate(chats []conversation.Chat) Result {
	loc := a.parser.Location()
	r := Result{
		TotalLeads:           len(chats),
		ActiveUsers:          len(chats),
		HourMap:              make([]HourBucket, 24),
		DailyData:            []DayBucket{},
		ResponseDistribution: newDistribution(),
		HighValueContacts:    []Contact{},
		Emails:               []ExportRow{},
	}
	for h := range r.HourMap {
		r.HourMap[h].Hour = fmt.Sprintf("%d:00", h)
	}

	days := make(map[string]*DayBucket)
	ghosted := 0

	for _, c := range chats {
		r.TotalMsgs += len(c.Messages)
		if c.FunnelStage.Captured() {
			r.LeadsCaptured++
		}
		if c.Lead.HasEmail() {
			r.EmailsCaptured++
			r.Emails = append(r.Emails, exportRow(c))
		}
		if c.Lead.HasNIT() {
			r.NITs++
		}
		if c.HighValue {
			r.HighValueCount++
			r.HighValueContacts = append(r.HighValueContacts, contact(c))
		}
		if IsGhosted(c) {
			ghosted++
		}
		r.Impatience += impatience(c.Messages)

		for _, m := range c.Messages {
			lower := strings.ToLower(m.Content)
			if containsAny(lower, quoteTerms) {
				r.QuoteRequests++
			}
			if containsAny(lower, locationTerms) {
				r.LocationRequests++
			}
			if containsAny(lower, catalogTerms) {
				r.CatalogRequests++
			}

			if !m.Timestamp.Valid {
				continue
			}
			if m.Inbound() {
				hour := m.Timestamp.Hour(loc)
				r.HourMap[hour].Value++
				if hour >= nightStart || hour < nightEnd {
					r.NightQueries++
				}
			}
			if m.Inbound() || m.Outbound() {
				key := m.Timestamp.Day(loc)
				day, ok := days[key]
				if !ok {
					day = &DayBucket{Date: key}
					days[key] = day
				}
				if m.Inbound() {
					day.Inbound++
				} else {
					day.Outbound++
				}
			}
		}

		for _, minutes := range c.Response.ResponseTimes {
			r.ResponseDistribution[Band(minutes)].Count++
		}
	}

	for _, d := range days {
		r.DailyData = append(r.DailyData, *d)
	}
	sort.Slice(r.DailyData, func(i, j int) bool { return r.DailyData[i].Date < r.DailyData[j].Date })
	sort.SliceStable(r.HighValueContacts, func(i, j int) bool {
		return r.HighValueContacts[i].Score > r.HighValueContacts[j].Score
	})

	r.GhostingRate = Percent(ghosted, len(chats))
	r.AvgMsgsPerChat = round1(ratio(r.TotalMsgs, len(chats)))
	return r
}

// IsGhosted reports whether the business spoke last after asking for
// something, and the customer never answered.
func IsGhosted(c conversation.Chat) bool {
	last, ok := c.LastMessage()
	if !ok || !last.Outbound() {
		return false
	}
	for _, m := range c.Messages {
		if m.Outbound() && containsAny(m.Content, ctaMarkers) {
			return true
		}
	}
	return false
}

// Band maps a latency in minutes to its distribution band.
func Band(minutes int) int {
	switch {
	case minutes < 5:
		return BandFast
	case minutes < 15:
		return BandGood
	case minutes < 60:
		return BandMedium
	case minutes < 240:
		return BandSlow
	default:
		return BandCritical
	}
}

func newDistribution() []LatencyBucket {
	return []LatencyBucket{
		{Label: "< 5 min", Rating: "excellent"},
		{Label: "5 - 15 min", Rating: "good"},
		{Label: "15 - 60 min", Rating: "fair"},
		{Label: "1 - 4 h", Rating: "slow"},
		{Label: "> 4 h", Rating: "critical"},
	}
}

// impatience counts inbound messages that directly follow another inbound one.
func impatience(msgs []conversation.Message) int {
	n := 0
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Inbound() && msgs[i-1].Inbound() {
			n++
		}
	}
	return n
}

func contact(c conversation.Chat) Contact {
	return Contact{
		ChatID:       c.ChatID,
		Name:         c.Lead.CapturedName,
		Email:        c.Lead.Email,
		NIT:          c.Lead.NIT,
		ProjectType:  c.Lead.ProjectType,
		Score:        c.Score,
		FunnelStage:  c.FunnelStage,
		LastActivity: c.Response.LastActivity,
		Messages:     len(c.Messages),
	}
}

func exportRow(c conversation.Chat) ExportRow {
	name := c.Lead.CapturedName
	if name == "" {
		name = DefaultContactName
	}
	return ExportRow{Name: name, Email: c.Lead.Email, Phone: c.ChatID, Score: c.Score}
}

// Percent is n/d as a percentage rounded to one decimal; 0 when d is 0.
func Percent(n, d int) float64 {
	return round1(ratio(n, d) * 100)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
