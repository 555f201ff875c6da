package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Operation completed successfully
	SymbolFail     = "✗" // Operation failed
	SymbolPending  = "○" // Unit stopped / nothing running
	SymbolProgress = "◐" // Action in progress
	SymbolActive   = "●" // Unit running
	SymbolWarning  = "!" // Needs attention
)
