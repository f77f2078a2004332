package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/droughtwatch/droughtwatch/internal/api"
	"github.com/droughtwatch/droughtwatch/internal/engine"
)

// noValuePlaceholder marks months and cells without a reading.
const noValuePlaceholder = "—"

// axisBarCells is the width of the timeline position bar.
const axisBarCells = 40

// sparklineMonths caps how much series history the panel chart shows.
const sparklineMonths = 48

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	sections := []string{
		m.renderHeader(),
		m.renderOverview(),
		m.table.View(),
		m.renderPanel(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderHeader() string {
	month := noValuePlaceholder
	if m.snap.Global.Bounded {
		month = m.snap.Global.Current.String()
	}
	title := HeaderStyle.Render("droughtwatch")
	status := fmt.Sprintf("dataset %s · index %s · month %s", m.snap.Dataset, m.snap.Index, month)
	if m.snap.MapLoading {
		status += "  " + m.spinner.View()
	}

	lines := []string{title + "  " + SubtleStyle.Render(status)}
	if m.snap.MapError != "" {
		lines = append(lines, ErrorStyle.Render("map degraded: "+m.snap.MapError)+
			SubtleStyle.Render("  (showing last loaded data)"))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderOverview() string {
	ov := m.snap.Overview
	if ov == nil {
		return SubtleStyle.Render("overview pending")
	}
	chips := []string{
		severityChip(api.ClassNormalWet, ov.NormalWet),
		severityChip(api.ClassD0, ov.D0),
		severityChip(api.ClassD1, ov.D1),
		severityChip(api.ClassD2, ov.D2),
		severityChip(api.ClassD3, ov.D3),
		severityChip(api.ClassD4, ov.D4),
	}
	counts := SubtleStyle.Render(fmt.Sprintf("  %d with data, %d missing", ov.WithValue, ov.Missing))
	return strings.Join(chips, SubtleStyle.Render(" │ ")) + counts
}

func severityChip(class string, count int) string {
	return SeverityStyle(class).Render(fmt.Sprintf("%s %d", class, count))
}

func (m DashboardModel) renderPanel() string {
	sel := m.snap.Selection
	if sel == nil {
		return SubtleStyle.Render("Press enter on a row to open its panel.")
	}

	title := ValueStyle.Render(sel.Name)
	if sel.Province != "" {
		title += SubtleStyle.Render(" · " + sel.Province)
	}
	if m.snap.PanelLoading {
		return CardStyle.Render(title + "\n" + m.spinner.View() + " loading")
	}

	var lines []string
	lines = append(lines, title+"  "+m.renderPanelMonth())

	switch {
	case m.snap.PanelNoData:
		lines = append(lines, NoteStyle.Render("No data for this feature and index."))
	case m.snap.KPI != nil:
		lines = append(lines, m.renderKPI(m.snap.KPI)...)
	}

	if spark := sparkline(m.snap.Series, sparklineMonths); spark != "" {
		lines = append(lines, spark)
	}
	if m.snap.Panel.Bounded {
		lines = append(lines, axisLine(m.snap.Panel))
	}
	if m.snap.PanelError != "" {
		lines = append(lines, ErrorStyle.Render("panel degraded: "+m.snap.PanelError))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

// renderPanelMonth shows the month the panel is on, plus how it was
// derived when it is not exactly the requested one.
func (m DashboardModel) renderPanelMonth() string {
	if !m.snap.Panel.Bounded {
		return SubtleStyle.Render(noValuePlaceholder)
	}
	out := SubtleStyle.Render(m.snap.Panel.Current.String())
	if m.snap.PanelNote != "" {
		out += " " + NoteStyle.Render("("+string(m.snap.PanelNote)+")")
	}
	return out
}

func (m DashboardModel) renderKPI(kpi *api.KPI) []string {
	severity := SeverityStyle(kpi.Severity).Render(kpi.Severity)
	stats := fmt.Sprintf("latest %.2f · min %.2f · max %.2f · mean %.2f",
		kpi.Latest, kpi.Min, kpi.Max, kpi.Mean)
	if kpi.Severity == api.ClassNA {
		stats = SubtleStyle.Render("values unavailable")
	}
	trend := fmt.Sprintf("%s %s", kpi.Trend.Symbol, kpi.Trend.LabelEN)
	return []string{
		severity + "  " + stats,
		SubtleStyle.Render("trend ") + trend,
	}
}

func (m DashboardModel) renderFooter() string {
	lines := []string{}
	if m.snap.Global.Bounded {
		lines = append(lines, axisLine(m.snap.Global))
	}
	help := "←/→ month · home/end jump · tab dataset · i index · enter select · esc close · [/] panel month · s sync · r reload · q quit"
	lines = append(lines, SubtleStyle.Render(help))
	return strings.Join(lines, "\n")
}

// axisLine renders "min [----●---] max" for one timeline.
func axisLine(v engine.AxisView) string {
	return fmt.Sprintf("%s %s %s",
		SubtleStyle.Render(v.Min.String()),
		axisBar(v, axisBarCells),
		SubtleStyle.Render(v.Max.String()))
}

// axisBar marks the current month's position within the bounds.
func axisBar(v engine.AxisView, cells int) string {
	if !v.Bounded || cells < 3 {
		return ""
	}
	span := int(v.Max - v.Min)
	pos := 0
	if span > 0 {
		pos = int(v.Current-v.Min) * (cells - 1) / span
	}
	var b strings.Builder
	for i := 0; i < cells; i++ {
		if i == pos {
			b.WriteRune('●')
		} else {
			b.WriteRune('─')
		}
	}
	return b.String()
}

// sparkline renders the tail of a series as a one-line chart. Months
// without a value render as spaces.
func sparkline(series *api.Timeseries, months int) string {
	if series == nil || len(series.Data) == 0 {
		return ""
	}
	data := series.Data
	if len(data) > months {
		data = data[len(data)-months:]
	}

	lo, hi := 0.0, 0.0
	seen := false
	for _, p := range data {
		if p.Value == nil {
			continue
		}
		if !seen || *p.Value < lo {
			lo = *p.Value
		}
		if !seen || *p.Value > hi {
			hi = *p.Value
		}
		seen = true
	}
	if !seen {
		return ""
	}

	span := hi - lo
	var b strings.Builder
	for _, p := range data {
		if p.Value == nil {
			b.WriteByte(' ')
			continue
		}
		idx := 0
		if span > 0 {
			idx = int((*p.Value - lo) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
