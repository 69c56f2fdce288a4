package collector

import (
	"context"
	"regexp"
	"strconv"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// loadRE matches the single /proc/loadavg line:
// `<1m> <5m> <15m> <running>/<total> <lastpid>`. Only the three averages and
// the total process count are kept.
var loadRE = regexp.MustCompile(`([0-9]+\.[0-9]+) ([0-9]+\.[0-9]+) ([0-9]+\.[0-9]+) ([0-9]+)/([0-9]+) ([0-9]+)`)

// loadStats is the parsed /proc/loadavg line.
type loadStats struct {
	load1          float64
	load5          float64
	load15         float64
	totalProcesses uint64
}

// Load reports the 1/5/15 minute load averages and the process count.
type Load struct {
	dev Device
}

func NewLoad(dev Device) *Load { return &Load{dev: dev} }

func (c *Load) Name() string { return "load" }

func (c *Load) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "cat /proc/loadavg")
	if err != nil {
		return nil, err
	}
	stats, err := parseLoad(body)
	if err != nil {
		return nil, err
	}
	return projectLoad(stats), nil
}

func parseLoad(body string) (loadStats, error) {
	m := loadRE.FindStringSubmatch(body)
	if m == nil {
		return loadStats{}, &ParseError{Family: "load", Detail: "output does not look like /proc/loadavg"}
	}
	// The regexp guarantees the captures are numeric.
	load1, _ := strconv.ParseFloat(m[1], 64)
	load5, _ := strconv.ParseFloat(m[2], 64)
	load15, _ := strconv.ParseFloat(m[3], 64)
	total, _ := strconv.ParseUint(m[5], 10, 64)
	return loadStats{load1: load1, load5: load5, load15: load15, totalProcesses: total}, nil
}

func projectLoad(stats loadStats) []expo.Series {
	gauge := func(name, help string, v float64) expo.Series {
		return expo.Series{
			Name:    name,
			Help:    help,
			Type:    expo.Gauge,
			Samples: []expo.Sample{{Value: v}},
		}
	}
	return []expo.Series{
		gauge("node_load1", "1m load average", stats.load1),
		gauge("node_load5", "5m load average", stats.load5),
		gauge("node_load15", "15m load average", stats.load15),
		gauge("node_processes_pids", "Number of PIDs", float64(stats.totalProcesses)),
	}
}
