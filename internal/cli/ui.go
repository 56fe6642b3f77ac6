package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
	"github.com/MikeSquared-Agency/leadlens/internal/rollup"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2).
		Width(72)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(28)

	valueStyle = lipgloss.NewStyle().
		Bold(true)

	alertStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	goodStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)
)

func renderAnalysis(a analysis) string {
	sections := []string{
		titleStyle.Render("LeadLens"),
		sectionStyle.Render(renderKPIs(a)),
		sectionStyle.Render(renderDistribution(a.KPIs.ResponseDistribution)),
	}
	if len(a.Insights) > 0 {
		sections = append(sections, sectionStyle.Render(renderInsights(a.Insights)))
	}
	if len(a.Comparison) > 0 {
		sections = append(sections, sectionStyle.Render(renderComparison(a.Comparison)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func row(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

func renderKPIs(a analysis) string {
	k := a.KPIs
	ghosting := fmt.Sprintf("%.1f%%", k.GhostingRate)
	if k.GhostingRate > 40 {
		ghosting = alertStyle.Render(ghosting)
	}
	lines := []string{
		row("Rows read", a.Rows),
		row("Rows dropped", a.Dropped),
		row("Chats", k.TotalLeads),
		row("Messages", k.TotalMsgs),
		row("Avg messages per chat", k.AvgMsgsPerChat),
		row("Leads captured", k.LeadsCaptured),
		row("Emails / NITs", fmt.Sprintf("%d / %d", k.EmailsCaptured, k.NITs)),
		row("High-value leads", k.HighValueCount),
		labelStyle.Render("Ghosting rate") + ghosting,
		row("Night queries", k.NightQueries),
		row("Quote requests", k.QuoteRequests),
		row("Pipeline potential", "$"+a.Finance.PipelinePotential.StringFixed(0)),
		row("Money at risk", "$"+a.Finance.MoneyAtRisk.StringFixed(0)),
	}
	return strings.Join(lines, "\n")
}

func renderDistribution(buckets []kpi.LatencyBucket) string {
	lines := []string{valueStyle.Render("Response times")}
	for _, b := range buckets {
		lines = append(lines, row(b.Label, b.Count))
	}
	return strings.Join(lines, "\n")
}

func renderInsights(insights []kpi.Insight) string {
	lines := []string{valueStyle.Render("Insights")}
	for _, i := range insights {
		lines = append(lines, alertStyle.Render(i.Title), "  "+i.Issue, "  "+goodStyle.Render(i.Solution))
	}
	return strings.Join(lines, "\n")
}

func renderComparison(rows []rollup.Row) string {
	lines := []string{valueStyle.Render(fmt.Sprintf("%-10s %6s %8s %8s %7s %7s", "Period", "Leads", "Avg", "Biz avg", "Fast%", "Ghost%"))}
	for _, r := range rows {
		line := fmt.Sprintf("%-10s %6d %7dm %7dm %6.1f%% %6.1f%%",
			r.Period, r.Leads, r.AvgResp, r.AvgBusinessResp, r.FastRate, r.GhostingRate)
		switch r.Trend {
		case rollup.TrendUp:
			line += " " + goodStyle.Render("▲")
		case rollup.TrendDown:
			line += " " + alertStyle.Render("▼")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
