// Package report asks a generative model for a strategy report over the KPIs.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
)

// ErrMissingAPIKey is returned before any network call when no key is set.
var ErrMissingAPIKey = errors.New("report api key is missing")

// Input is everything the report is written from.
type Input struct {
	KPIs      kpi.Result
	Insights  []kpi.Insight
	AvgTicket decimal.Decimal
}

// Generator produces text for a prompt with the given credential.
type Generator interface {
	Generate(ctx context.Context, apiKey, system, prompt string) (string, error)
}

// Writer builds the prompt and delegates generation.
type Writer struct {
	gen Generator
}

func NewWriter(gen Generator) *Writer {
	return &Writer{gen: gen}
}

// Write returns the Markdown report. The KPIs are only read.
func (w *Writer) Write(ctx context.Context, apiKey string, in Input) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingAPIKey
	}
	text, err := w.gen.Generate(ctx, apiKey, systemPrompt, BuildPrompt(in))
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate report: empty response")
	}
	return text, nil
}

// BuildPrompt formats the KPI figures and insights into the user prompt.
func BuildPrompt(in Input) string {
	k := in.KPIs
	critical := 0
	if len(k.ResponseDistribution) > kpi.BandCritical {
		critical = k.ResponseDistribution[kpi.BandCritical].Count
	}

	lines := make([]string, 0, len(in.Insights))
	for _, i := range in.Insights {
		lines = append(lines, fmt.Sprintf("- %s: %s", i.Title, i.Issue))
	}
	insights := strings.Join(lines, "\n")
	if insights == "" {
		insights = "- (none)"
	}

	return fmt.Sprintf(reportUserPrompt,
		k.TotalLeads,
		k.TotalMsgs,
		k.LeadsCaptured,
		k.GhostingRate,
		k.HighValueCount,
		critical,
		k.NightQueries,
		insights,
		in.AvgTicket.StringFixed(0),
	)
}

// Gemini generates with the Gemini API. A client is built per call because
// the key comes from settings and may change between requests.
type Gemini struct {
	model   string
	baseURL string
}

func NewGemini(model string) *Gemini {
	return &Gemini{model: model}
}

// SetTestTransport points the client at a test server.
func (g *Gemini) SetTestTransport(baseURL string) {
	g.baseURL = baseURL
}

func (g *Gemini) Generate(ctx context.Context, apiKey, system, prompt string) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	return resp.Text(), nil
}
