// Package telemetry turns the server's dashboard payload into chart-ready
// data and keeps it fresh on a fixed cadence.
package telemetry

import (
	"time"

	"github.com/opsdeck/opsdeck/internal/api"
)

// Point is one chart-ready history sample.
type Point struct {
	Label  string
	CPU    float64
	Memory float64
	Disk   float64
}

// timestampLayouts are the shapes the server emits, tried in order. The
// backend sends naive ISO timestamps, with or without fractional seconds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// SnapshotOrZero unwraps a metrics snapshot, substituting zero readings
// when the server sent null. Callers render a quiet gauge instead of
// special-casing the absence.
func SnapshotOrZero(m *api.MetricsSnapshot) api.MetricsSnapshot {
	if m == nil {
		return api.MetricsSnapshot{}
	}
	return *m
}

// BuildPoints converts server history entries into chart points, one per
// entry. Samples with absent readings chart as zero rather than being
// dropped, so gaps stay visible on the time axis.
func BuildPoints(entries []api.HistoryEntry) []Point {
	if len(entries) == 0 {
		return nil
	}

	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{
			Label:  clockLabel(e.Timestamp),
			CPU:    e.CPU,
			Memory: e.Memory,
			Disk:   e.Disk,
		}
	}
	return points
}

// clockLabel renders a server timestamp as HH:MM:SS for chart axes. An
// unparseable timestamp is passed through untouched.
func clockLabel(raw string) string {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("15:04:05")
		}
	}
	return raw
}
