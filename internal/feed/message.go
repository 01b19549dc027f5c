// Package feed streams chart frames to websocket clients.
//
// A Broadcaster keeps the most recent frames and fans every new one out to
// registered channels. The Server exposes it over HTTP: /ws streams frames
// as JSON messages (replaying the buffered ones first) and /snapshot returns
// the newest frame.
package feed

import (
	"math"
	"time"

	"github.com/rileyhilliard/stripchart/internal/chart"
)

// Message is one frame on the wire. Values that are not finite (unset axis
// bounds, NaN) are sent as null.
type Message struct {
	Tick   uint64       `json:"tick"`
	Time   time.Time    `json:"time"`
	Params []ParamState `json:"params"`
}

// ParamState is the wire form of a parameter snapshot. Only the newest value
// is carried; clients build the history from consecutive messages.
type ParamState struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	Active      bool     `json:"active"`
	Value       *float64 `json:"value"`
	Lower       *float64 `json:"lower"`
	Upper       *float64 `json:"upper"`
	Autorange   bool     `json:"autorange"`
	Plot        string   `json:"plot"`
	Scale       string   `json:"scale"`
}

// FromFrame converts a chart frame to its wire form.
func FromFrame(f chart.Frame) Message {
	m := Message{Tick: f.Tick, Time: f.Time, Params: make([]ParamState, len(f.Params))}
	for i, s := range f.Params {
		p := ParamState{
			Name:        s.Name,
			Description: s.Description,
			Color:       s.Color,
			Active:      s.Active,
			Lower:       finite(s.Lower),
			Upper:       finite(s.Upper),
			Autorange:   s.Autorange,
			Plot:        s.Plot.String(),
			Scale:       s.Scale.String(),
		}
		if s.HasValue {
			p.Value = finite(s.Latest)
		}
		m.Params[i] = p
	}
	return m
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
