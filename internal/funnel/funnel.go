// Package funnel assigns each chat its sales-funnel stage.
package funnel

import (
	"strings"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

var (
	quoteMarkers = []string{".pdf", "cotización enviada"}
	leadMarkers  = []string{"@", "nit:"}
)

// Classify evaluates the stages from furthest to nearest; the first match wins.
func Classify(msgs []conversation.Message) conversation.FunnelStage {
	transcript := conversation.Transcript(msgs)

	switch {
	case containsAny(transcript, quoteMarkers):
		return conversation.StageQuoteSent
	case containsAny(transcript, leadMarkers):
		return conversation.StageLeadCaptured
	case hasOutbound(msgs):
		return conversation.StageEngaged
	default:
		return conversation.StageInquiry
	}
}

func hasOutbound(msgs []conversation.Message) bool {
	for _, m := range msgs {
		if m.Outbound() {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
