package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Check passed
	SymbolFail    = "✗" // Check failed
	SymbolWarning = "⚠" // Accepted with a warning
	SymbolPending = "○" // Not checked
)
