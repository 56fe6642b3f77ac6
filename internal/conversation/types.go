// Package conversation holds the chat-log domain model shared by every
// analytics stage.
package conversation

import (
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/dates"
)

// Direction is who sent a message.
type Direction int

const (
	// DirectionOther covers any Type literal other than the two known ones.
	// It is kept on the record but never matches direction-specific logic.
	DirectionOther Direction = iota
	DirectionInbound
	DirectionOutbound
)

// Export literals of the Type column.
const (
	TypeReceived = "Received"
	TypeSended   = "Sended"
)

// ParseDirection maps the raw Type literal. Matching is exact.
func ParseDirection(raw string) Direction {
	switch raw {
	case TypeReceived:
		return DirectionInbound
	case TypeSended:
		return DirectionOutbound
	default:
		return DirectionOther
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	default:
		return "other"
	}
}

// Message is one ingested row.
type Message struct {
	ChatID     string        `json:"chat_id"`
	Type       string        `json:"type"` // raw Type literal
	Direction  Direction     `json:"direction"`
	Date       string        `json:"date"` // raw Date column
	Timestamp  dates.Instant `json:"timestamp"`
	SenderName string        `json:"sender_name"`
	Content    string        `json:"content"`
}

func (m Message) Inbound() bool  { return m.Direction == DirectionInbound }
func (m Message) Outbound() bool { return m.Direction == DirectionOutbound }

// FunnelStage is the furthest-progressed classification for a chat.
type FunnelStage string

const (
	StageInquiry      FunnelStage = "Inquiry"
	StageEngaged      FunnelStage = "Engaged"
	StageLeadCaptured FunnelStage = "Lead Captured"
	StageQuoteSent    FunnelStage = "Quote Sent"
)

// Captured reports whether the stage counts as a captured lead.
func (s FunnelStage) Captured() bool {
	return s == StageLeadCaptured || s == StageQuoteSent
}

// LeadInfo holds contact signals pulled from the transcript. Empty strings
// mean the field was never found.
type LeadInfo struct {
	Email        string `json:"email,omitempty"`
	NIT          string `json:"nit,omitempty"`
	CapturedName string `json:"captured_name,omitempty"`
	ProjectType  string `json:"project_type,omitempty"`
}

func (l LeadInfo) HasEmail() bool { return l.Email != "" }
func (l LeadInfo) HasNIT() bool   { return l.NIT != "" }
func (l LeadInfo) HasName() bool  { return l.CapturedName != "" }

// ResponseMetrics are the inbound→outbound latencies of a chat.
type ResponseMetrics struct {
	ResponseTimes     []int  `json:"response_times"` // minutes, outliers removed
	AvgResponseTime   int    `json:"avg_response_time"`
	TotalInteractions int    `json:"total_interactions"`
	LastActivity      string `json:"last_activity"` // raw date of the final message
}

// Chat is a reconstructed conversation with its derived analytics. A Chat is
// never mutated after the pipeline builds it.
type Chat struct {
	ChatID      string          `json:"chat_id"`
	Messages    []Message       `json:"messages"`
	Lead        LeadInfo        `json:"lead"`
	Response    ResponseMetrics `json:"response"`
	FunnelStage FunnelStage     `json:"funnel_stage"`
	Score       int             `json:"score"`
	HighValue   bool            `json:"is_high_value"`
}

// LastMessage returns the final message and false when the chat is empty.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Transcript joins every message's lowercased content with single spaces.
func Transcript(msgs []Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = strings.ToLower(m.Content)
	}
	return strings.Join(parts, " ")
}
