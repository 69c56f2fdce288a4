package collector

import (
	"context"
	"regexp"
	"strconv"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// timeRE matches the two-line `date +%s && cat /proc/uptime` output: the
// current Unix timestamp, then `<up_seconds>.<frac> <idle_seconds>.<frac>`.
var timeRE = regexp.MustCompile(`(?s)([0-9]+)\n([0-9]+)\.[0-9]+ [0-9]+\.[0-9]+`)

// timeStats holds the device's current and boot Unix timestamps.
type timeStats struct {
	currentUnix uint64
	bootUnix    uint64
}

// Time reports the device's clock and derived boot time.
type Time struct {
	dev Device
}

func NewTime(dev Device) *Time { return &Time{dev: dev} }

func (c *Time) Name() string { return "time" }

func (c *Time) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "date +%s && cat /proc/uptime")
	if err != nil {
		return nil, err
	}
	stats, err := parseTime(body)
	if err != nil {
		return nil, err
	}
	return projectTime(stats), nil
}

func parseTime(body string) (timeStats, error) {
	m := timeRE.FindStringSubmatch(body)
	if m == nil {
		return timeStats{}, &ParseError{Family: "time", Detail: "output does not look like a timestamp plus /proc/uptime"}
	}
	current, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return timeStats{}, &ParseError{Family: "time", Detail: "timestamp out of range"}
	}
	// Fractional uptime seconds are discarded: boot time is whole seconds.
	up, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil || up > current {
		return timeStats{}, &ParseError{Family: "time", Detail: "uptime exceeds current timestamp"}
	}
	return timeStats{currentUnix: current, bootUnix: current - up}, nil
}

func projectTime(stats timeStats) []expo.Series {
	return []expo.Series{
		{
			Name:    "node_time_seconds",
			Help:    "System time in seconds since epoch (1970)",
			Type:    expo.Gauge,
			Samples: []expo.Sample{{Value: float64(stats.currentUnix)}},
		},
		{
			Name:    "node_boot_time_seconds",
			Help:    "Node boot time, in unixtime",
			Type:    expo.Gauge,
			Samples: []expo.Sample{{Value: float64(stats.bootUnix)}},
		},
	}
}
