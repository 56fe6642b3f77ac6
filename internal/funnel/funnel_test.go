package funnel

import (
	"testing"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

func TestClassify(t *testing.T) {
	inbound := func(c string) conversation.Message {
		return conversation.Message{Direction: conversation.DirectionInbound, Content: c}
	}
	outbound := func(c string) conversation.Message {
		return conversation.Message{Direction: conversation.DirectionOutbound, Content: c}
	}

	tests := []struct {
		name string
		msgs []conversation.Message
		want conversation.FunnelStage
	}{
		{"attachment wins over everything", []conversation.Message{inbound("mi correo a@b.com"), outbound("Cotizacion_123.PDF")}, conversation.StageQuoteSent},
		{"explicit quote phrase", []conversation.Message{outbound("Cotización enviada por correo")}, conversation.StageQuoteSent},
		{"email captured", []conversation.Message{inbound("a@b.com")}, conversation.StageLeadCaptured},
		{"nit captured", []conversation.Message{inbound("NIT: 123")}, conversation.StageLeadCaptured},
		{"business replied", []conversation.Message{inbound("hola"), outbound("buenas")}, conversation.StageEngaged},
		{"unknown direction does not engage", []conversation.Message{inbound("hola"), {Direction: conversation.DirectionOther, Content: "x"}}, conversation.StageInquiry},
		{"default", []conversation.Message{inbound("hola")}, conversation.StageInquiry},
		{"empty chat", nil, conversation.StageInquiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.msgs); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
