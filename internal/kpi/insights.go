package kpi

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ghostingAlert is the ghosting rate above which closing friction is flagged.
const ghostingAlert = 40

// Insight is one actionable finding for the report collaborator.
type Insight struct {
	Title    string `json:"title"`
	Issue    string `json:"issue"`
	Solution string `json:"solution"`
}

// Insights derives the ordered findings from a result.
func Insights(r Result) []Insight {
	insights := []Insight{}

	if r.HighValueCount > 0 {
		insights = append(insights, Insight{
			Title:    "Oportunidades High-Ticket",
			Issue:    fmt.Sprintf("Se detectaron %d leads contextuales de alto valor (Industria/Construcción).", r.HighValueCount),
			Solution: "Revisar los leads de alto valor y priorizar el contacto telefónico. Estos leads tienen un score de 35 o más.",
		})
	}

	if r.GhostingRate > ghostingAlert {
		insights = append(insights, Insight{
			Title:    "Fricción en Cierre (Ghosting)",
			Issue:    fmt.Sprintf("El %.1f%% de usuarios abandona.", r.GhostingRate),
			Solution: "Táctica de ventas: enviar el precio base antes de pedir el NIT completo.",
		})
	}

	if r.NightQueries > 0 {
		insights = append(insights, Insight{
			Title:    "Demanda Nocturna (8PM - 7AM)",
			Issue:    fmt.Sprintf("Se detectaron %d mensajes fuera de horario.", r.NightQueries),
			Solution: "Automatización: configurar autorespuesta nocturna con link al catálogo PDF.",
		})
	}

	if len(r.ResponseDistribution) > BandCritical &&
		r.ResponseDistribution[BandCritical].Count > r.ResponseDistribution[BandFast].Count {
		insights = append(insights, Insight{
			Title:    "Cuello de Botella Crítico",
			Issue:    "Los tiempos de respuesta de más de 4 horas superan a los inmediatos.",
			Solution: "Urgente: implementar chatbot de triaje inicial.",
		})
	}

	return insights
}

// Finance is the revenue projection shown next to the KPIs.
type Finance struct {
	AvgTicket         decimal.Decimal `json:"avg_ticket"`
	PipelinePotential decimal.Decimal `json:"pipeline_potential"`
	GhostedLeads      int64           `json:"ghosted_leads"`
	MoneyAtRisk       decimal.Decimal `json:"money_at_risk"`
}

// ProjectFinance values high-value leads and ghosted leads at avgTicket.
func ProjectFinance(r Result, avgTicket decimal.Decimal) Finance {
	ghosted := decimal.NewFromInt(int64(r.TotalLeads)).
		Mul(decimal.NewFromFloat(r.GhostingRate)).
		Div(decimal.NewFromInt(100)).
		Round(0)

	return Finance{
		AvgTicket:         avgTicket,
		PipelinePotential: avgTicket.Mul(decimal.NewFromInt(int64(r.HighValueCount))),
		GhostedLeads:      ghosted.IntPart(),
		MoneyAtRisk:       avgTicket.Mul(ghosted),
	}
}
