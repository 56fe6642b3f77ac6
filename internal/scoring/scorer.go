// Package scoring computes the deterministic lead-quality score of a chat.
package scoring

import (
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

// HighValueThreshold is the hard cutoff for a high-value lead.
const HighValueThreshold = 35

// Signal is a keyword category that adds its weight once when any of its
// terms appears in the lowercased transcript.
type Signal struct {
	Name   string
	Terms  []string
	Weight int
}

// Signals are evaluated independently; every match adds.
var Signals = []Signal{
	{Name: "pricing", Terms: []string{"cotización", "precio", "costo"}, Weight: 15},
	{Name: "catalog", Terms: []string{"catálogo", "catalogo"}, Weight: 10},
	{Name: "location", Terms: []string{"ubicación", "dirección"}, Weight: 8},
	{Name: "industrial", Terms: []string{"galpón", "nave industrial"}, Weight: 25},
	{Name: "building", Terms: []string{"edificio", "condominio"}, Weight: 20},
	{Name: "professional", Terms: []string{"arquitecto", "constructora"}, Weight: 20},
	{Name: "wholesale", Terms: []string{"por mayor", "mayorista"}, Weight: 15},
	{Name: "project", Terms: []string{"proyecto"}, Weight: 10},
	{Name: "medical", Terms: []string{"clínica", "hospital"}, Weight: 20},
}

const (
	emailWeight = 20
	nitWeight   = 15
	nameWeight  = 10

	depthWeight = 5
	depthFirst  = 5  // messages needed beyond this for the first bonus
	depthSecond = 10 // and beyond this for the second

	shortChat         = 3
	lowScore          = 10
	lowQualityPenalty = 10
)

// Breakdown itemizes a score.
type Breakdown struct {
	Keywords []string
	Keyword  int
	Info     int
	Depth    int
	Penalty  int
	Total    int
}

// Score returns the final score of a chat.
func Score(msgs []conversation.Message, info conversation.LeadInfo) int {
	return Explain(msgs, info).Total
}

// IsHighValue applies the high-value cutoff.
func IsHighValue(score int) bool {
	return score >= HighValueThreshold
}

// Explain computes the score and records which terms contributed.
//
// Formula: keyword weights + captured-field weights + depth bonus, then a
// single penalty for short chats whose raw sum is still below lowScore. The
// result never drops below 0.
func Explain(msgs []conversation.Message, info conversation.LeadInfo) Breakdown {
	transcript := conversation.Transcript(msgs)

	var b Breakdown
	for _, s := range Signals {
		if matches(transcript, s.Terms) {
			b.Keyword += s.Weight
			b.Keywords = append(b.Keywords, s.Name)
		}
	}

	if info.HasEmail() {
		b.Info += emailWeight
	}
	if info.HasNIT() {
		b.Info += nitWeight
	}
	if info.HasName() {
		b.Info += nameWeight
	}

	if len(msgs) > depthFirst {
		b.Depth += depthWeight
	}
	if len(msgs) > depthSecond {
		b.Depth += depthWeight
	}

	raw := b.Keyword + b.Info + b.Depth
	if len(msgs) < shortChat && raw < lowScore {
		b.Penalty = lowQualityPenalty
	}
	b.Total = floor(raw - b.Penalty)
	return b
}

func matches(transcript string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(transcript, t) {
			return true
		}
	}
	return false
}

func floor(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
