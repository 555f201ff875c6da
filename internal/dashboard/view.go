package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/telemetry"
	"github.com/opsdeck/opsdeck/internal/ui"
)

// sparklineWidth is how many samples the overview gauges display.
const sparklineWidth = 30

// render renders the complete dashboard view.
func (m Model) render() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if line := m.renderNotice(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.tab {
	case TabServices:
		b.WriteString(m.renderServices())
	case TabSystem:
		b.WriteString(m.renderSystem())
	default:
		b.WriteString(m.renderOverview())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	content := b.String()
	if m.showHelp {
		return m.renderHelpOverlay(content)
	}
	return content
}

// renderHeader renders the title bar with hostname, tabs, and freshness.
func (m Model) renderHeader() string {
	hostname := "connecting..."
	if m.overview != nil {
		hostname = m.overview.SystemInfo.Hostname
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("opsdeck")

	var tabs []string
	for _, t := range []Tab{TabOverview, TabServices, TabSystem} {
		label := fmt.Sprintf("%d:%s", int(t)+1, t)
		if t == m.tab {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabInactiveStyle.Render(label))
		}
	}

	freshness := "no data yet"
	if !m.lastUpdate.IsZero() {
		freshness = "updated " + m.lastUpdate.Format("15:04:05")
	}
	if m.pollErr != nil {
		freshness = "stale, retrying"
	}

	stats := LabelStyle.Render(fmt.Sprintf(" | %s | %s", hostname, freshness))
	return HeaderStyle.Render(title+stats) + "  " + strings.Join(tabs, "  ")
}

// renderNotice renders the transient status line, if any.
func (m Model) renderNotice() string {
	if m.notice.text == "" {
		return ""
	}

	switch m.notice.level {
	case noticeSuccess:
		return NoticeSuccessStyle.Render(ui.SymbolSuccess + " " + m.notice.text)
	case noticeError:
		return NoticeErrorStyle.Render(ui.SymbolFail + " " + m.notice.text)
	default:
		return NoticeInfoStyle.Render(m.notice.text)
	}
}

// renderOverview renders the metrics pane: gauges, sparklines, alerts.
func (m Model) renderOverview() string {
	if m.overview == nil {
		if m.pollErr != nil {
			return NoticeErrorStyle.Render(ui.SymbolFail + " " + firstLine(m.pollErr.Error()))
		}
		return m.spin.View() + " " + LabelStyle.Render("Waiting for first telemetry sample...")
	}

	snapshot := telemetry.SnapshotOrZero(m.overview.CurrentMetrics)

	cards := []string{
		m.renderMetricCard("CPU", snapshot.CPU.Percent,
			fmt.Sprintf("%d cores", snapshot.CPU.Cores), m.history.CPU(sparklineWidth)),
		m.renderMetricCard("Memory", snapshot.Memory.Percent,
			ui.FormatUsage(snapshot.Memory.UsedGB, snapshot.Memory.TotalGB), m.history.Memory(sparklineWidth)),
		m.renderMetricCard("Disk", snapshot.Disk.Percent,
			ui.FormatUsage(snapshot.Disk.UsedGB, snapshot.Disk.TotalGB), m.history.Disk(sparklineWidth)),
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	var b strings.Builder
	b.WriteString(row)
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine(snapshot))
	return b.String()
}

// renderMetricCard renders one gauge card with a sparkline.
func (m Model) renderMetricCard(name string, percent float64, detail string, history []float64) string {
	valueStyle := lipgloss.NewStyle().
		Foreground(severityColor(percent)).
		Bold(true)

	var b strings.Builder
	b.WriteString(TitleStyle.Render(name))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(ui.FormatPercent(percent)))
	b.WriteString(" ")
	b.WriteString(LabelStyle.Render(detail))
	b.WriteString("\n")

	if spark := ui.RenderSparkline(history, sparklineWidth); spark != "" {
		b.WriteString(spark)
	} else {
		b.WriteString(MutedStyle.Render(strings.Repeat("·", sparklineWidth)))
	}

	return CardStyle.Width(sparklineWidth + 2).Render(b.String())
}

// renderStatusLine renders uptime, alerts, and the service tally.
func (m Model) renderStatusLine(snapshot api.MetricsSnapshot) string {
	parts := []string{}

	if snapshot.Uptime.Formatted != "" {
		parts = append(parts, LabelStyle.Render("up ")+ValueStyle.Render(snapshot.Uptime.Formatted))
	}

	alerts := m.overview.ActiveAlerts
	if alerts > 0 {
		parts = append(parts, NoticeErrorStyle.Render(fmt.Sprintf("%s %d active alerts", ui.SymbolWarning, alerts)))
	} else {
		parts = append(parts, NoticeSuccessStyle.Render(ui.SymbolSuccess+" no active alerts"))
	}

	if total := m.overview.ServicesSummary.Total; total > 0 {
		parts = append(parts, LabelStyle.Render(
			fmt.Sprintf("%d/%d services running", m.overview.ServicesSummary.Running, total)))
	}

	return strings.Join(parts, MutedStyle.Render("  |  "))
}

// renderServices renders the unit list with selection and pending markers.
func (m Model) renderServices() string {
	if len(m.services) == 0 {
		return LabelStyle.Render("No services loaded yet. Press R to refresh.")
	}

	rows := make([]string, 0, len(m.services)+1)
	rows = append(rows, MutedStyle.Render(fmt.Sprintf("  %-28s %-14s %-12s %s", "UNIT", "STATE", "SUB", "DESCRIPTION")))

	visible := m.visibleServiceRange()
	for i := visible.from; i < visible.to; i++ {
		rows = append(rows, m.renderServiceRow(i))
	}

	if len(m.services) > visible.to-visible.from {
		rows = append(rows, MutedStyle.Render(
			fmt.Sprintf("  showing %d-%d of %d", visible.from+1, visible.to, len(m.services))))
	}
	return strings.Join(rows, "\n")
}

type rowRange struct {
	from, to int
}

// visibleServiceRange windows the unit list around the selection so it
// fits the terminal height.
func (m Model) visibleServiceRange() rowRange {
	capacity := m.height - 8
	if capacity < 5 {
		capacity = 5
	}
	if len(m.services) <= capacity {
		return rowRange{0, len(m.services)}
	}

	from := m.selected - capacity/2
	if from < 0 {
		from = 0
	}
	to := from + capacity
	if to > len(m.services) {
		to = len(m.services)
		from = to - capacity
	}
	return rowRange{from, to}
}

// renderServiceRow renders one unit row.
func (m Model) renderServiceRow(i int) string {
	s := m.services[i]

	state := ui.RenderStateBadge(s.ActiveState)
	if action, pending := m.dispatcher.Pending(s.Name); pending {
		state = NoticeInfoStyle.Render(ui.SymbolProgress + " " + action + "...")
	}

	desc := s.Description
	if len(desc) > 40 {
		desc = desc[:37] + "..."
	}

	line := fmt.Sprintf("  %-28s %-14s %-12s %s",
		truncate(s.Name, 28), ansiPad(state, 14), s.SubState, desc)

	if i == m.selected && m.tab == TabServices {
		return RowSelectedStyle.Render("▸" + line[1:])
	}
	return line
}

// renderSystem renders the host detail pane.
func (m Model) renderSystem() string {
	if m.hostInfo == nil {
		return LabelStyle.Render("Host details not loaded yet.")
	}

	info := m.hostInfo
	lines := []string{
		TitleStyle.Render(info.Hostname),
		"",
		kv("OS", fmt.Sprintf("%s %s", info.OS.Name, info.OS.Version)),
		kv("Kernel", fmt.Sprintf("%s %s", info.Kernel.Name, info.Kernel.Release)),
		kv("Arch", info.Kernel.Machine),
		kv("Uptime", info.Uptime.Formatted),
		kv("Timezone", info.Timezone),
		kv("Locale", info.Locale),
	}

	return CardStyle.Render(strings.Join(lines, "\n"))
}

// renderFooter renders the keyboard hints for the active tab.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "tab switch", "R refresh"}
	if m.tab == TabServices {
		hints = append(hints, "↑↓ select", "s start", "x stop", "r restart")
	}
	hints = append(hints, "? help")
	return FooterStyle.Render(strings.Join(hints, " | "))
}

// kv renders one "Label  value" detail line.
func kv(label, value string) string {
	return LabelStyle.Width(10).Render(label) + ValueStyle.Render(value)
}

// truncate shortens a string to maxLen with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen || maxLen <= 3 {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ansiPad pads a styled string to a visual width, since fmt counts the
// escape codes lipgloss emits.
func ansiPad(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// firstLine trims a multi-line error message to its leading line.
func firstLine(s string) string {
	s = strings.TrimPrefix(s, ui.SymbolFail+" ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
