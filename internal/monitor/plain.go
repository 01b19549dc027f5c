package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/stripchart/internal/chart"
)

// FormatPlain renders a frame as a single line: the tick number followed by
// name=value for every parameter. Parameters without a value show "-".
func FormatPlain(f chart.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s tick %d", f.Time.Format("15:04:05"), f.Tick)
	for _, s := range f.Params {
		value := "-"
		if s.HasValue {
			value = chart.FormatValue(s.Latest)
		}
		b.WriteString(" ")
		b.WriteString(s.Name)
		b.WriteString("=")
		b.WriteString(value)
		if !s.Active {
			b.WriteString("(off)")
		}
	}
	return b.String()
}

// WritePlain writes one line per frame until ctx is done.
func WritePlain(ctx context.Context, w io.Writer, frames <-chan chart.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			if _, err := fmt.Fprintln(w, FormatPlain(f)); err != nil {
				return err
			}
		}
	}
}
