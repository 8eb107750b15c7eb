package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"opsdiary/pkg/contracts/domain"
)

// Email is a rendered diary email, both bodies carrying the same content.
type Email struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Input bundles everything the email renderer needs.
type Input struct {
	Client      string
	Periods     []string
	KPIs        domain.KPISummary
	Bookings    []domain.BookingRecord
	Delays      []domain.DelayRecord
	Reschedules []domain.RescheduleRecord
	Analysis    Analysis
}

// BuildEmail renders the diary email for one client over the given periods.
func BuildEmail(in Input) Email {
	subject := fmt.Sprintf("Diário de Bordo – %s – %s", in.Client, PeriodsLabel(in.Periods))
	return Email{
		Subject: subject,
		Text:    buildText(in),
		HTML:    buildHTML(in, subject),
	}
}

func portLabel(p *string) string {
	if p == nil || *p == "" {
		return "N/D"
	}
	return *p
}

func buildText(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DIÁRIO DE BORDO – %s\n", in.Client)
	fmt.Fprintf(&b, "Período: %s\n\n", PeriodsLabel(in.Periods))

	b.WriteString("INDICADORES\n")
	fmt.Fprintf(&b, "  Total de operações: %d\n", in.KPIs.TotalOps)
	fmt.Fprintf(&b, "  Porto com maior volume: %s\n", portLabel(in.KPIs.BusiestPort))
	fmt.Fprintf(&b, "  Porto com menor volume: %s\n", portLabel(in.KPIs.QuietestPort))
	fmt.Fprintf(&b, "  Atrasos de coleta: %d\n", in.KPIs.CollectionDelays)
	fmt.Fprintf(&b, "  Atrasos de entrega: %d\n", in.KPIs.DeliveryDelays)
	fmt.Fprintf(&b, "  Reagendamentos (Mercosul): %d\n\n", in.KPIs.Reschedules)

	if rows := volumeRows(in.Bookings); len(rows) > 0 {
		b.WriteString("VOLUME POR PORTO DE ORIGEM\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %s: %d\n", r.Port, r.Quantity)
		}
		b.WriteString("\n")
	}

	writeTextReasons(&b, "PRINCIPAIS MOTIVOS – ATRASO DE COLETA", delayReasons(in.Delays, domain.DelayTypeCollection))
	writeTextReasons(&b, "PRINCIPAIS MOTIVOS – ATRASO DE ENTREGA", delayReasons(in.Delays, domain.DelayTypeDelivery))
	writeTextReasons(&b, "PRINCIPAIS MOTIVOS – REAGENDAMENTO", rescheduleReasons(in.Reschedules))

	if rows := variationRows(in.Bookings, in.Periods); len(rows) > 0 {
		b.WriteString("VARIAÇÃO DE VOLUME POR PERÍODO\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %s: %d (%s)\n", PeriodLabel(r.Period), r.Quantity, r.Delta)
		}
		b.WriteString("\n")
	}

	b.WriteString("ANÁLISE GERAL\n")
	b.WriteString(in.Analysis.General + "\n\n")
	b.WriteString("PONTOS CRÍTICOS\n")
	b.WriteString(in.Analysis.CriticalPoints + "\n\n")
	b.WriteString("RECOMENDAÇÕES\n")
	b.WriteString(in.Analysis.Recommendations + "\n\n")
	b.WriteString("CONCLUSÃO EXECUTIVA\n")
	b.WriteString(in.Analysis.Conclusion + "\n")
	return b.String()
}

func writeTextReasons(b *strings.Builder, title string, reasons []string) {
	ranked := topReasons(reasons, 5)
	if len(ranked) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, rc := range ranked {
		fmt.Fprintf(b, "  %s (%d)\n", rc.Reason, rc.Count)
	}
	b.WriteString("\n")
}

func buildHTML(in Input, subject string) string {
	var b strings.Builder
	esc := html.EscapeString
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"></head>`)
	b.WriteString(`<body style="font-family:Arial,Helvetica,sans-serif;color:#1c2733;margin:0;padding:24px;background:#f4f6f8">`)
	b.WriteString(`<div style="max-width:720px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px">`)
	fmt.Fprintf(&b, `<h1 style="font-size:20px;border-bottom:2px solid #0b5394;padding-bottom:8px">%s</h1>`, esc(subject))

	b.WriteString(`<h2 style="font-size:16px;color:#0b5394">Indicadores</h2>`)
	b.WriteString(`<table style="border-collapse:collapse;width:100%">`)
	indicator := func(label, value string) {
		fmt.Fprintf(&b, `<tr><td style="padding:6px;border:1px solid #dde3e8">%s</td><td style="padding:6px;border:1px solid #dde3e8;text-align:right;font-weight:bold">%s</td></tr>`,
			esc(label), esc(value))
	}
	indicator("Total de operações", fmt.Sprintf("%d", in.KPIs.TotalOps))
	indicator("Porto com maior volume", portLabel(in.KPIs.BusiestPort))
	indicator("Porto com menor volume", portLabel(in.KPIs.QuietestPort))
	indicator("Atrasos de coleta", fmt.Sprintf("%d", in.KPIs.CollectionDelays))
	indicator("Atrasos de entrega", fmt.Sprintf("%d", in.KPIs.DeliveryDelays))
	indicator("Reagendamentos (Mercosul)", fmt.Sprintf("%d", in.KPIs.Reschedules))
	b.WriteString(`</table>`)

	if rows := volumeRows(in.Bookings); len(rows) > 0 {
		b.WriteString(`<h2 style="font-size:16px;color:#0b5394">Volume por porto de origem</h2>`)
		b.WriteString(`<table style="border-collapse:collapse;width:100%">`)
		b.WriteString(`<tr><th style="padding:6px;border:1px solid #dde3e8;background:#eef3f7;text-align:left">Porto</th><th style="padding:6px;border:1px solid #dde3e8;background:#eef3f7;text-align:right">Operações</th></tr>`)
		for _, r := range rows {
			fmt.Fprintf(&b, `<tr><td style="padding:6px;border:1px solid #dde3e8">%s</td><td style="padding:6px;border:1px solid #dde3e8;text-align:right">%d</td></tr>`,
				esc(r.Port), r.Quantity)
		}
		b.WriteString(`</table>`)
	}

	writeHTMLReasons(&b, "Principais motivos – atraso de coleta", delayReasons(in.Delays, domain.DelayTypeCollection))
	writeHTMLReasons(&b, "Principais motivos – atraso de entrega", delayReasons(in.Delays, domain.DelayTypeDelivery))
	writeHTMLReasons(&b, "Principais motivos – reagendamento", rescheduleReasons(in.Reschedules))

	if rows := variationRows(in.Bookings, in.Periods); len(rows) > 0 {
		b.WriteString(`<h2 style="font-size:16px;color:#0b5394">Variação de volume por período</h2>`)
		b.WriteString(`<table style="border-collapse:collapse;width:100%">`)
		b.WriteString(`<tr><th style="padding:6px;border:1px solid #dde3e8;background:#eef3f7;text-align:left">Período</th><th style="padding:6px;border:1px solid #dde3e8;text-align:right;background:#eef3f7">Operações</th><th style="padding:6px;border:1px solid #dde3e8;text-align:right;background:#eef3f7">Variação</th></tr>`)
		for _, r := range rows {
			fmt.Fprintf(&b, `<tr><td style="padding:6px;border:1px solid #dde3e8">%s</td><td style="padding:6px;border:1px solid #dde3e8;text-align:right">%d</td><td style="padding:6px;border:1px solid #dde3e8;text-align:right">%s</td></tr>`,
				esc(PeriodLabel(r.Period)), r.Quantity, esc(r.Delta))
		}
		b.WriteString(`</table>`)
	}

	section := func(title, body string) {
		fmt.Fprintf(&b, `<h2 style="font-size:16px;color:#0b5394">%s</h2>`, esc(title))
		fmt.Fprintf(&b, `<p style="white-space:pre-line;line-height:1.5">%s</p>`, esc(body))
	}
	section("Análise geral", in.Analysis.General)
	section("Pontos críticos", in.Analysis.CriticalPoints)
	section("Recomendações", in.Analysis.Recommendations)
	section("Conclusão executiva", in.Analysis.Conclusion)

	b.WriteString(`</div></body></html>`)
	return b.String()
}

func writeHTMLReasons(b *strings.Builder, title string, reasons []string) {
	ranked := topReasons(reasons, 5)
	if len(ranked) == 0 {
		return
	}
	fmt.Fprintf(b, `<h2 style="font-size:16px;color:#0b5394">%s</h2><ul>`, html.EscapeString(title))
	for _, rc := range ranked {
		fmt.Fprintf(b, `<li>%s (%d)</li>`, html.EscapeString(rc.Reason), rc.Count)
	}
	b.WriteString(`</ul>`)
}

type volumeRow struct {
	Port     string
	Quantity int
}

// volumeRows ranks origin ports by descending total quantity, first-seen
// order breaking ties.
func volumeRows(bookings []domain.BookingRecord) []volumeRow {
	order, totals := portVolumes(bookings)
	rows := make([]volumeRow, 0, len(order))
	for _, p := range order {
		rows = append(rows, volumeRow{Port: p, Quantity: totals[p]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Quantity > rows[j].Quantity })
	return rows
}

type variationRow struct {
	Period   string
	Quantity int
	Delta    string
}

// variationRows lists booking totals per period in chronological order with
// the change against the previous period. Needs at least two periods.
func variationRows(bookings []domain.BookingRecord, periods []string) []variationRow {
	if len(periods) < 2 {
		return nil
	}
	totals := make(map[string]int)
	for _, bk := range bookings {
		totals[bk.Period] += bk.Quantity
	}
	sorted := append([]string(nil), periods...)
	sort.Strings(sorted)
	rows := make([]variationRow, 0, len(sorted))
	for i, p := range sorted {
		row := variationRow{Period: p, Quantity: totals[p], Delta: "–"}
		if i > 0 {
			prev := totals[sorted[i-1]]
			diff := row.Quantity - prev
			switch {
			case prev == 0 && diff == 0:
				row.Delta = "0"
			case prev == 0:
				row.Delta = fmt.Sprintf("%+d", diff)
			default:
				row.Delta = fmt.Sprintf("%+d (%+.1f%%)", diff, 100*float64(diff)/float64(prev))
			}
		}
		rows = append(rows, row)
	}
	return rows
}
