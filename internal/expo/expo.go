package expo

import (
	"strconv"
	"strings"
)

// Type is the metric type written on a series' # TYPE line.
type Type string

const (
	Counter   Type = "counter"
	Gauge     Type = "gauge"
	Histogram Type = "histogram"
	Summary   Type = "summary"
	Untyped   Type = "untyped"
)

// Label is one name="value" pair on a sample line.
type Label struct {
	Name  string
	Value string
}

// Sample is one observation within a series. Labels are rendered in the
// order given; projectors own sample ordering, the renderer never re-sorts.
type Sample struct {
	Labels    []Label
	Value     float64
	Timestamp *int64
}

// Series is one named metric with its help text, type, and samples.
type Series struct {
	Name    string
	Help    string
	Type    Type
	Samples []Sample
}

// Render writes the series list in the Prometheus text exposition format.
//
// Each series renders as a # HELP line, a # TYPE line, then one line per
// sample; samples are joined by a single newline, and series are joined by a
// single newline. A series with no samples still renders its two header
// lines. No trailing newline is appended after the last series.
func Render(series []Series) string {
	rendered := make([]string, 0, len(series))
	for _, s := range series {
		rendered = append(rendered, renderSeries(s))
	}
	return strings.Join(rendered, "\n")
}

func renderSeries(s Series) string {
	var b strings.Builder
	b.WriteString("# HELP ")
	b.WriteString(s.Name)
	b.WriteByte(' ')
	b.WriteString(s.Help)
	b.WriteString("\n# TYPE ")
	b.WriteString(s.Name)
	b.WriteByte(' ')
	b.WriteString(string(s.Type))
	b.WriteByte('\n')

	lines := make([]string, 0, len(s.Samples))
	for _, sample := range s.Samples {
		lines = append(lines, renderSample(s.Name, sample))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func renderSample(name string, s Sample) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, l := range s.Labels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Name)
		b.WriteString(`="`)
		b.WriteString(l.Value)
		b.WriteByte('"')
	}
	b.WriteString("} ")
	b.WriteString(formatValue(s.Value))
	if s.Timestamp != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(*s.Timestamp, 10))
	}
	return b.String()
}

// formatValue renders v in its shortest decimal form without an exponent,
// so integral counters come out as plain integers.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
