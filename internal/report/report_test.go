package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
)

type fakeGenerator struct {
	calls  int
	apiKey string
	prompt string
	text   string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, apiKey, _, prompt string) (string, error) {
	f.calls++
	f.apiKey = apiKey
	f.prompt = prompt
	return f.text, f.err
}

func sampleInput() Input {
	return Input{
		KPIs: kpi.Result{
			TotalLeads:     40,
			TotalMsgs:      900,
			LeadsCaptured:  12,
			GhostingRate:   42.5,
			HighValueCount: 5,
			NightQueries:   7,
			ResponseDistribution: []kpi.LatencyBucket{
				{Count: 3}, {}, {}, {}, {Count: 9},
			},
		},
		Insights:  []kpi.Insight{{Title: "Demanda Nocturna (8PM - 7AM)", Issue: "Se detectaron 7 mensajes fuera de horario."}},
		AvgTicket: decimal.NewFromInt(750),
	}
}

func TestWrite_MissingKeySkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	_, err := NewWriter(gen).Write(context.Background(), "  ", sampleInput())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generator should not be called without a key")
	}
}

func TestWrite_Success(t *testing.T) {
	gen := &fakeGenerator{text: "## 1. Diagnóstico Ejecutivo\nok"}
	got, err := NewWriter(gen).Write(context.Background(), "key-1", sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "## 1.") {
		t.Errorf("unexpected report %q", got)
	}
	if gen.apiKey != "key-1" {
		t.Errorf("expected key-1, got %q", gen.apiKey)
	}
}

func TestWrite_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	_, err := NewWriter(gen).Write(context.Background(), "key", sampleInput())
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}

	empty := &fakeGenerator{text: "  "}
	if _, err := NewWriter(empty).Write(context.Background(), "key", sampleInput()); err == nil {
		t.Error("expected error on empty response")
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleInput())
	for _, want := range []string{
		"Total Leads: 40",
		"Total Messages: 900",
		"Ghosting Rate (Lost at Closing): 42.5%",
		"High Value Leads (Score >= 35): 5",
		"Response Speed Critical (> 4h): 9",
		"Night Queries (8PM-7AM): 7",
		"- Demanda Nocturna (8PM - 7AM): Se detectaron 7 mensajes fuera de horario.",
		"Assume High Value Lead = $750 USD",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	bare := BuildPrompt(Input{AvgTicket: decimal.NewFromInt(500)})
	if !strings.Contains(bare, "- (none)") || !strings.Contains(bare, "Response Speed Critical (> 4h): 0") {
		t.Errorf("unexpected prompt for empty input:\n%s", bare)
	}
}

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if _, ok := req["systemInstruction"]; !ok {
			t.Error("expected system instruction in request")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "informe"}},
				},
			}},
		})
	}))
	defer server.Close()

	g := NewGemini("gemini-test")
	g.SetTestTransport(server.URL)

	got, err := g.Generate(context.Background(), "test-key", "system", "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "informe" {
		t.Errorf("expected informe, got %q", got)
	}
}

func TestGemini_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	g := NewGemini("gemini-test")
	g.SetTestTransport(server.URL)

	if _, err := g.Generate(context.Background(), "test-key", "system", "hola"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
