package collector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// memLineRE matches one `<Name>:  <N> kB` line of /proc/meminfo. No field
// name is known in advance; whatever the device reports is kept.
var memLineRE = regexp.MustCompile(`(?m)^([^:\n]+): +([0-9]+) kB$`)

// Memory reports every /proc/meminfo field as a byte-count gauge.
type Memory struct {
	dev Device
}

func NewMemory(dev Device) *Memory { return &Memory{dev: dev} }

func (c *Memory) Name() string { return "memory" }

func (c *Memory) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "cat /proc/meminfo")
	if err != nil {
		return nil, err
	}
	fields, err := parseMemory(body)
	if err != nil {
		return nil, err
	}
	return projectMemory(fields), nil
}

func parseMemory(body string) (map[string]uint64, error) {
	matches := memLineRE.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Family: "memory", Detail: "no `<Name>: <N> kB` lines in /proc/meminfo output"}
	}

	fields := make(map[string]uint64, len(matches))
	for _, m := range matches {
		kb, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return nil, &ParseError{
				Family: "memory",
				Detail: fmt.Sprintf("field %s: %q is not a number", m[1], m[2]),
			}
		}
		fields[m[1]] = kb * 1024
	}
	return fields, nil
}

func projectMemory(fields map[string]uint64) []expo.Series {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]expo.Series, 0, len(names))
	for _, name := range names {
		series = append(series, expo.Series{
			Name:    fmt.Sprintf("node_memory_%s_bytes", name),
			Help:    fmt.Sprintf("Memory information field %s_bytes", name),
			Type:    expo.Gauge,
			Samples: []expo.Sample{{Value: float64(fields[name])}},
		})
	}
	return series
}
