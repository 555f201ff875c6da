package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ServiceStateColor maps a systemd active state to a badge color. Active
// units are green, dead or failed units are red, and everything in
// between (activating, deactivating, reloading) is yellow.
func ServiceStateColor(activeState string) lipgloss.Color {
	switch activeState {
	case "active":
		return ColorSuccess
	case "inactive", "failed":
		return ColorError
	default:
		return ColorWarning
	}
}

// ServiceStateSymbol maps a systemd active state to a status symbol.
func ServiceStateSymbol(activeState string) string {
	switch activeState {
	case "active":
		return SymbolActive
	case "inactive":
		return SymbolPending
	case "failed":
		return SymbolFail
	default:
		return SymbolProgress
	}
}

// RenderStateBadge renders a colored state indicator like "● active".
func RenderStateBadge(activeState string) string {
	style := lipgloss.NewStyle().Foreground(ServiceStateColor(activeState))
	return style.Render(ServiceStateSymbol(activeState) + " " + activeState)
}

// FormatPercent renders a percentage with one decimal, e.g. "42.5%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatGB renders a gigabyte figure with one decimal, e.g. "9.8 GB".
func FormatGB(v float64) string {
	return fmt.Sprintf("%.1f GB", v)
}

// FormatUsage renders used/total storage, e.g. "9.8 / 16.0 GB".
func FormatUsage(used, total float64) string {
	return fmt.Sprintf("%.1f / %.1f GB", used, total)
}
