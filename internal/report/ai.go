package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"opsdiary/internal/config"
	"opsdiary/pkg/contracts/domain"
)

// Analyzer produces the narrative email sections, preferring a Gemini model
// and falling back to the templated text when the model is unavailable or
// misbehaves.
type Analyzer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAnalyzer builds an Analyzer from configuration. When no API key is set
// the returned Analyzer serves templated sections only.
func NewAnalyzer(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) *Analyzer {
	a := &Analyzer{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With(slog.String("component", "analyzer")),
	}
	if cfg.APIKey == "" {
		a.logger.Info("no AI API key configured, narrative sections use templates")
		return a
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		a.logger.Warn("AI client init failed, narrative sections use templates",
			slog.String("error", err.Error()))
		return a
	}
	a.client = client
	return a
}

// Analyze returns the four narrative sections for the summary. Any model
// failure degrades to FallbackAnalysis.
func (a *Analyzer) Analyze(ctx context.Context, kpis domain.KPISummary, periods []string, delays []domain.DelayRecord, reschedules []domain.RescheduleRecord) Analysis {
	fallback := FallbackAnalysis(kpis, periods)
	if a.client == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	chat, err := a.client.Chats.Create(ctx, a.model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: analystInstruction}}},
	}, nil)
	if err != nil {
		a.logger.Warn("AI chat create failed, using templated sections",
			slog.String("error", err.Error()))
		return fallback
	}

	resp, err := chat.Send(ctx, &genai.Part{Text: buildPrompt(kpis, periods, delays, reschedules)})
	if err != nil {
		a.logger.Warn("AI generation failed, using templated sections",
			slog.String("error", err.Error()))
		return fallback
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		a.logger.Warn("AI returned empty response, using templated sections")
		return fallback
	}

	analysis, ok := parseSections(resp.Candidates[0].Content.Parts[0].Text)
	if !ok {
		a.logger.Warn("AI response missing sections, using templated sections")
		return fallback
	}
	return analysis
}

const analystInstruction = `Você é um analista sênior de operações logísticas.
Escreva em português do Brasil, em tom executivo e objetivo, sem inventar
números além dos fornecidos.`

func buildPrompt(kpis domain.KPISummary, periods []string, delays []domain.DelayRecord, reschedules []domain.RescheduleRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Período analisado: %s\n", PeriodsLabel(periods))
	fmt.Fprintf(&b, "Total de operações: %d\n", kpis.TotalOps)
	if kpis.BusiestPort != nil {
		fmt.Fprintf(&b, "Porto com maior volume: %s\n", *kpis.BusiestPort)
	}
	if kpis.QuietestPort != nil {
		fmt.Fprintf(&b, "Porto com menor volume: %s\n", *kpis.QuietestPort)
	}
	fmt.Fprintf(&b, "Atrasos de coleta: %d\n", kpis.CollectionDelays)
	fmt.Fprintf(&b, "Atrasos de entrega: %d\n", kpis.DeliveryDelays)
	fmt.Fprintf(&b, "Reagendamentos (Mercosul): %d\n", kpis.Reschedules)

	writeReasons := func(title string, reasons []string) {
		ranked := topReasons(reasons, 5)
		if len(ranked) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, rc := range ranked {
			fmt.Fprintf(&b, "- %s (%d)\n", rc.Reason, rc.Count)
		}
	}
	writeReasons("Principais motivos de atraso de coleta", delayReasons(delays, domain.DelayTypeCollection))
	writeReasons("Principais motivos de atraso de entrega", delayReasons(delays, domain.DelayTypeDelivery))
	writeReasons("Principais motivos de reagendamento", rescheduleReasons(reschedules))

	b.WriteString(`
Com base nesses dados, escreva quatro seções, cada uma iniciada exatamente
pelo marcador em maiúsculas na própria linha:
ANALISE_GERAL:
PONTOS_CRITICOS:
RECOMENDACOES:
CONCLUSAO:
Seja conciso (2 a 4 frases por seção; pontos críticos e recomendações em
itens iniciados por "•").`)
	return b.String()
}

var sectionMarkers = []string{"ANALISE_GERAL:", "PONTOS_CRITICOS:", "RECOMENDACOES:", "CONCLUSAO:"}

// parseSections splits the model output on the four required markers. All
// four must be present, in order.
func parseSections(text string) (Analysis, bool) {
	idx := make([]int, len(sectionMarkers))
	pos := 0
	for i, marker := range sectionMarkers {
		at := strings.Index(text[pos:], marker)
		if at < 0 {
			return Analysis{}, false
		}
		idx[i] = pos + at
		pos = idx[i] + len(marker)
	}
	section := func(i int) string {
		start := idx[i] + len(sectionMarkers[i])
		end := len(text)
		if i+1 < len(idx) {
			end = idx[i+1]
		}
		return strings.TrimSpace(text[start:end])
	}
	a := Analysis{
		General:         section(0),
		CriticalPoints:  section(1),
		Recommendations: section(2),
		Conclusion:      section(3),
	}
	if a.General == "" || a.Conclusion == "" {
		return Analysis{}, false
	}
	return a, true
}
