// Package monitor implements the terminal dashboard for a running strip
// chart.
//
// The dashboard shows one row per traced parameter: a strip of its recent
// history drawn against the current axis bounds, followed by the values
// table (current value, scale, bottom and top of the axis). The selected
// parameter gets a taller graph underneath.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds the latest chart frame, selection and layout
//   - Update: Processes keystrokes, window size and new frames
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// The model does not sample anything itself. The chart's scheduler ticks on
// its own goroutine and publishes a frame after every tick:
//
//  1. Chart.Subscribe delivers a chart.Frame after each post-update
//  2. waitForFrame turns it into a frameMsg
//  3. Update stores the frame and waits for the next one
//  4. View() re-renders from the stored frame
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	j/k, ↑/↓    - Select parameter
//	a           - Toggle autorange on the selected parameter
//	d           - Deactivate the selected parameter
//	+ / -       - Double / halve the tick interval
//	?           - Toggle help overlay
//
// WritePlain renders the same frames as one text line per tick for output
// that is not a terminal (see FormatPlain).
package monitor
