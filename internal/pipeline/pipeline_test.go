package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/ingest"
)

const exportCSV = `Chats,Type,Date,Name,Content
"59170000001",Received,2024-01-05 08:00:00,Ana,hola necesito cotización
59170000001,Sended,2024-01-05 08:10:00,Ventas,"claro, precio: $500"
59170000002,Received,2024-01-06 09:00:00,Luis,"hola, es para una nave industrial. correo: luis@obra.bo"
59170000002,Sended,2024-01-06 09:02:00,Ventas,le envío el catálogo
,Received,2024-01-06 09:03:00,Nadie,sin chat
`

func TestRun_ScenarioPricingChat(t *testing.T) {
	out, err := Run(strings.NewReader(exportCSV), dates.NewParser(time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Rows != 5 || out.Dropped != 1 {
		t.Errorf("rows=%d dropped=%d, want 5 and 1", out.Rows, out.Dropped)
	}
	if len(out.Chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(out.Chats))
	}
	if out.Messages() != 4 {
		t.Errorf("expected 4 messages, got %d", out.Messages())
	}

	a := out.Chats[0]
	if a.ChatID != "59170000001" {
		t.Fatalf("unexpected first chat %q", a.ChatID)
	}
	if len(a.Response.ResponseTimes) != 1 || a.Response.ResponseTimes[0] != 10 {
		t.Errorf("expected one 10 minute response, got %v", a.Response.ResponseTimes)
	}
	if a.Score < 15 {
		t.Errorf("expected pricing score >= 15, got %d", a.Score)
	}
	if a.FunnelStage != conversation.StageEngaged {
		t.Errorf("expected Engaged, got %q", a.FunnelStage)
	}
	if a.Response.LastActivity != "2024-01-05 08:10:00" {
		t.Errorf("last activity = %q", a.Response.LastActivity)
	}
}

func TestRun_ScenarioIndustrialLead(t *testing.T) {
	out, err := Run(strings.NewReader(exportCSV), dates.NewParser(time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := out.Chats[1]
	if b.Lead.Email != "luis@obra.bo" {
		t.Errorf("expected email captured, got %q", b.Lead.Email)
	}
	if b.Score < 45 || !b.HighValue {
		t.Errorf("expected high value score >= 45, got %d (high=%v)", b.Score, b.HighValue)
	}
	if b.FunnelStage != conversation.StageLeadCaptured {
		t.Errorf("expected Lead Captured, got %q", b.FunnelStage)
	}
	if out.HighValue() != 1 {
		t.Errorf("expected 1 high value chat, got %d", out.HighValue())
	}
}

func TestRun_MalformedProducesNoChats(t *testing.T) {
	out, err := Run(strings.NewReader("Chats,Type,Content\n1,Received,hola\n"), dates.NewParser(time.UTC))
	if !errors.Is(err, ingest.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if out != nil {
		t.Error("expected no outcome on structural failure")
	}
}

func TestHolder_ReplaceWholesale(t *testing.T) {
	var h Holder
	if got := h.Load(); got == nil || len(got.Chats) != 0 {
		t.Fatal("expected empty snapshot before first ingestion")
	}

	first := NewSnapshot([]conversation.Chat{{ChatID: "a"}, {ChatID: "b"}})
	h.Replace(first)
	second := NewSnapshot([]conversation.Chat{{ChatID: "c"}})
	h.Replace(second)

	got := h.Load()
	if got.ID != second.ID || len(got.Chats) != 1 || got.Chats[0].ChatID != "c" {
		t.Errorf("expected the second snapshot only, got %+v", got)
	}
	if first.ID == second.ID {
		t.Error("snapshots should get distinct ids")
	}

	h.Replace(nil)
	if len(h.Load().Chats) != 0 {
		t.Error("replacing with nil should clear the set")
	}
}
