// Package ui provides the styled text pieces shared by stripchart's
// commands: the ANSI palette, status symbols, the report header and tables.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Passed checks
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
//
// # Tables
//
// NewTable wraps the Bubbles table with the palette above. RenderSimpleTable
// renders one as a plain string for command output, and RenderCheckTable
// lays out the report of the check command.
package ui
