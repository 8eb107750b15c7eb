package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdiary/pkg/contracts/domain"
)

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		period string
		want   string
	}{
		{"2024-10", "OUT/24"},
		{"2024-01", "JAN/24"},
		{"2023-12", "DEZ/23"},
		{"2024-13", "2024-13"},
		{"2024", "2024"},
		{"24-10", "24-10"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodLabel(tt.period))
		})
	}
}

func TestPeriodsLabel(t *testing.T) {
	assert.Equal(t, "OUTUBRO/24, NOVEMBRO/24",
		PeriodsLabel([]string{"2024-11", "2024-10"}), "periods come out sorted")
	assert.Equal(t, "MARÇO/25", PeriodsLabel([]string{"2025-03"}))
	assert.Equal(t, "", PeriodsLabel(nil))
	assert.Equal(t, "garbage, JANEIRO/24",
		PeriodsLabel([]string{"garbage", "2024-01"}))
}

func TestPeriodsLabelDoesNotMutateInput(t *testing.T) {
	periods := []string{"2024-11", "2024-10"}
	PeriodsLabel(periods)
	assert.Equal(t, []string{"2024-11", "2024-10"}, periods)
}

func TestFallbackAnalysis(t *testing.T) {
	port := "SSZ"
	kpis := domain.KPISummary{
		TotalOps:         42,
		BusiestPort:      &port,
		CollectionDelays: 3,
		DeliveryDelays:   0,
		Reschedules:      2,
	}

	a := FallbackAnalysis(kpis, []string{"2024-10"})

	assert.Contains(t, a.General, "OUTUBRO/24")
	assert.Contains(t, a.General, "42 operações")
	assert.Contains(t, a.General, "SSZ")
	assert.Contains(t, a.CriticalPoints, "Atrasos de Coleta: 3")
	assert.NotContains(t, a.CriticalPoints, "Atrasos de Entrega")
	assert.Contains(t, a.CriticalPoints, "Reagendamentos: 2")
	assert.Contains(t, a.Recommendations, "checklist pré-coleta")
	assert.NotContains(t, a.Recommendations, "janelas de entrega")
	assert.Contains(t, a.Recommendations, "monitoramento contínuo")
	assert.Contains(t, a.Conclusion, "42 operações")
}

func TestFallbackAnalysisEmptySummary(t *testing.T) {
	a := FallbackAnalysis(domain.KPISummary{}, nil)

	assert.Contains(t, a.General, "N/D", "missing busiest port renders as N/D")
	assert.Contains(t, a.CriticalPoints, "Nenhum ponto crítico")
	assert.Contains(t, a.Conclusion, "Operação estável")
	require.NotEmpty(t, a.Recommendations)
	assert.Equal(t, 1, strings.Count(a.Recommendations, "•"),
		"only the standing monitoring recommendation remains")
}

func TestTopReasons(t *testing.T) {
	reasons := []string{"janela", "documentação", "janela", "tráfego", "documentação", "janela"}

	ranked := topReasons(reasons, 5)

	require.Len(t, ranked, 3)
	assert.Equal(t, reasonCount{Reason: "janela", Count: 3}, ranked[0])
	assert.Equal(t, reasonCount{Reason: "documentação", Count: 2}, ranked[1])
	assert.Equal(t, reasonCount{Reason: "tráfego", Count: 1}, ranked[2])
}

func TestTopReasonsTiesKeepFirstSeenOrder(t *testing.T) {
	ranked := topReasons([]string{"b", "a", "b", "a"}, 5)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Reason)
	assert.Equal(t, "a", ranked[1].Reason)
}

func TestTopReasonsLimit(t *testing.T) {
	ranked := topReasons([]string{"a", "b", "c"}, 2)
	assert.Len(t, ranked, 2)
	assert.Empty(t, topReasons(nil, 5))
}

func TestDelayReasonsFiltersByType(t *testing.T) {
	delays := []domain.DelayRecord{
		{TypeNorm: domain.DelayTypeCollection, Reason: "janela"},
		{TypeNorm: domain.DelayTypeDelivery, Reason: "tráfego"},
		{TypeNorm: domain.DelayTypeCollection, Reason: "documentação"},
	}
	assert.Equal(t, []string{"janela", "documentação"},
		delayReasons(delays, domain.DelayTypeCollection))
	assert.Equal(t, []string{"tráfego"},
		delayReasons(delays, domain.DelayTypeDelivery))
}

func TestPortVolumes(t *testing.T) {
	bookings := []domain.BookingRecord{
		{OriginPort: "SSZ", Quantity: 10},
		{OriginPort: "ITJ", Quantity: 4},
		{OriginPort: "SSZ", Quantity: 5},
	}

	order, totals := portVolumes(bookings)

	assert.Equal(t, []string{"SSZ", "ITJ"}, order)
	assert.Equal(t, 15, totals["SSZ"])
	assert.Equal(t, 4, totals["ITJ"])
}
