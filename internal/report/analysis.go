// Package report builds the operations diary deliverables out of canonical
// records and the KPI summary: section text (AI-backed with a templated
// fallback), the text and HTML email bodies, and the .eml packaging.
// Consumer-facing copy stays in Portuguese, matching what the operation
// actually sends.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"opsdiary/pkg/contracts/domain"
)

// Analysis carries the four narrative sections of the diary email.
type Analysis struct {
	General         string `json:"analise_geral"`
	CriticalPoints  string `json:"pontos_criticos"`
	Recommendations string `json:"recomendacoes"`
	Conclusion      string `json:"conclusao"`
}

var shortMonths = []string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

var longMonths = []string{
	"JANEIRO", "FEVEREIRO", "MARÇO", "ABRIL", "MAIO", "JUNHO",
	"JULHO", "AGOSTO", "SETEMBRO", "OUTUBRO", "NOVEMBRO", "DEZEMBRO",
}

// PeriodLabel renders "2024-10" as "OUT/24". Unparseable periods pass
// through untouched.
func PeriodLabel(period string) string {
	year, month, ok := splitPeriod(period)
	if !ok {
		return period
	}
	return fmt.Sprintf("%s/%s", shortMonths[month-1], year[2:])
}

// PeriodsLabel renders a sorted period list as "OUTUBRO/24, NOVEMBRO/24".
func PeriodsLabel(periods []string) string {
	sorted := append([]string(nil), periods...)
	sort.Strings(sorted)
	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		year, month, ok := splitPeriod(p)
		if !ok {
			parts = append(parts, p)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s/%s", longMonths[month-1], year[2:]))
	}
	return strings.Join(parts, ", ")
}

func splitPeriod(period string) (year string, month int, ok bool) {
	y, m, found := strings.Cut(period, "-")
	if !found || len(y) != 4 {
		return "", 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 || n > 12 {
		return "", 0, false
	}
	return y, n, true
}

// FallbackAnalysis produces the deterministic templated sections used when
// no AI model is configured or the call fails.
func FallbackAnalysis(kpis domain.KPISummary, periods []string) Analysis {
	return Analysis{
		General:         fallbackGeneral(kpis, periods),
		CriticalPoints:  fallbackCriticalPoints(kpis),
		Recommendations: fallbackRecommendations(kpis),
		Conclusion:      fallbackConclusion(kpis),
	}
}

func fallbackGeneral(kpis domain.KPISummary, periods []string) string {
	top := "N/D"
	if kpis.BusiestPort != nil && *kpis.BusiestPort != "" {
		top = *kpis.BusiestPort
	}
	return fmt.Sprintf(
		"Durante o período de %s, registramos um total de %d operações, "+
			"com o porto de %s apresentando o maior volume de movimentação. "+
			"A operação manteve-se dentro dos parâmetros esperados, com alguns pontos de atenção "+
			"identificados nos processos de coleta e entrega que serão detalhados a seguir.",
		PeriodsLabel(periods), kpis.TotalOps, top)
}

func fallbackCriticalPoints(kpis domain.KPISummary) string {
	var points []string
	if kpis.CollectionDelays > 0 {
		points = append(points, fmt.Sprintf("• Atrasos de Coleta: %d ocorrências identificadas, impactando o início das operações", kpis.CollectionDelays))
	}
	if kpis.DeliveryDelays > 0 {
		points = append(points, fmt.Sprintf("• Atrasos de Entrega: %d casos registrados, afetando prazos acordados", kpis.DeliveryDelays))
	}
	if kpis.Reschedules > 0 {
		points = append(points, fmt.Sprintf("• Reagendamentos: %d reagendamentos atribuídos ao Mercosul, indicando necessidade de revisão de janelas", kpis.Reschedules))
	}
	if len(points) == 0 {
		points = append(points, "• Nenhum ponto crítico significativo identificado no período")
	}
	return strings.Join(points, "\n")
}

func fallbackRecommendations(kpis domain.KPISummary) string {
	var recs []string
	if kpis.CollectionDelays > 0 {
		recs = append(recs, "• Implementar checklist pré-coleta para validação de documentação antecipada")
	}
	if kpis.DeliveryDelays > 0 {
		recs = append(recs, "• Revisar janelas de entrega com clientes recorrentes para otimizar agendamentos")
	}
	if kpis.Reschedules > 0 {
		recs = append(recs, "• Intensificar comunicação entre transportador e terminal para reduzir reagendamentos")
	}
	recs = append(recs, "• Manter monitoramento contínuo dos indicadores operacionais")
	return strings.Join(recs, "\n")
}

func fallbackConclusion(kpis domain.KPISummary) string {
	var msgs []string
	if kpis.TotalOps > 0 {
		msgs = append(msgs, fmt.Sprintf("Volume operacional relevante (%d operações no período), demonstrando continuidade de demanda.", kpis.TotalOps))
	}
	if kpis.CollectionDelays > 0 || kpis.DeliveryDelays > 0 {
		msgs = append(msgs, "Persistem atrasos de coleta/entrega, sugerindo foco em documentação antecipada e disponibilidade de janela.")
	}
	if kpis.Reschedules > 0 {
		msgs = append(msgs, "Houve reagendamentos atribuídos ao Mercosul; recomenda-se revisar janelas e comunicação entre transportador e terminal.")
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "Operação estável, sem registros críticos de atraso ou reagendamento relevantes neste período.")
	}
	return strings.Join(msgs, " ")
}

// reasonCount is one (reason, occurrences) pair of a frequency ranking.
type reasonCount struct {
	Reason string
	Count  int
}

// topReasons ranks reasons by descending count, first-seen order breaking
// ties, truncated to limit.
func topReasons(reasons []string, limit int) []reasonCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range reasons {
		if _, seen := counts[r]; !seen {
			order = append(order, r)
		}
		counts[r]++
	}
	ranked := make([]reasonCount, 0, len(order))
	for _, r := range order {
		ranked = append(ranked, reasonCount{Reason: r, Count: counts[r]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// delayReasons collects the reasons of delay records matching one type.
func delayReasons(delays []domain.DelayRecord, typeNorm string) []string {
	var out []string
	for _, d := range delays {
		if d.TypeNorm == typeNorm {
			out = append(out, d.Reason)
		}
	}
	return out
}

// rescheduleReasons collects the reasons of all reschedule records.
func rescheduleReasons(reschedules []domain.RescheduleRecord) []string {
	out := make([]string, 0, len(reschedules))
	for _, r := range reschedules {
		out = append(out, r.Reason)
	}
	return out
}

// portVolumes sums booking quantity per origin port in first-seen order.
func portVolumes(bookings []domain.BookingRecord) ([]string, map[string]int) {
	totals := make(map[string]int)
	var order []string
	for _, b := range bookings {
		if _, seen := totals[b.OriginPort]; !seen {
			order = append(order, b.OriginPort)
		}
		totals[b.OriginPort] += b.Quantity
	}
	return order, totals
}
