package report

const systemPrompt = `You are a Senior Business Analyst for a company that sells over WhatsApp.
You write strategic reports in Spanish for the sales manager. Be professional and direct.
Only use the figures you are given; never invent data.`

const reportUserPrompt = `Analyze the following KPI data and provide a strategic report.

DATA:
- Total Leads: %d
- Total Messages: %d
- Leads Captured (Interest): %d
- Ghosting Rate (Lost at Closing): %.1f%%
- High Value Leads (Score >= 35): %d
- Response Speed Critical (> 4h): %d
- Night Queries (8PM-7AM): %d

CURRENT INSIGHTS DETECTED:
%s

OUTPUT FORMAT (Markdown):
## 1. Diagnóstico Ejecutivo
[Brief summary of the current situation]

## 2. Oportunidades de Ingresos (Proyección)
[Calculate potential lost revenue based on Ghosting Rate and High Value Leads. Assume High Value Lead = $%s USD avg value.]

## 3. Acciones Inmediatas (Prioridad Alta)
- [Action 1]
- [Action 2]
- [Action 3]

## 4. Estrategia de Contenido & Scripts
[Suggest 1 specific WhatsApp script to recover 'Ghosted' leads based on the data]
`
