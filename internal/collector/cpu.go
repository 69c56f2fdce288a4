package collector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// jiffiesPerSecond converts the kernel's CPU accounting units to seconds.
const jiffiesPerSecond = 100

// cpuLineRE matches one per-core line of /proc/stat. The aggregate "cpu "
// line is skipped: only numbered cores are reported.
var cpuLineRE = regexp.MustCompile(`(?m)^cpu([0-9]+) (.*)$`)

// cpuStats holds one core's time-in-mode in seconds. Older kernels report
// fewer columns; a nil optional field means the column was absent, which is
// different from it being zero.
type cpuStats struct {
	user   float64
	nice   float64
	system float64
	idle   float64

	iowait  *float64
	irq     *float64
	softirq *float64
	steal   *float64
}

// CPU reports per-core time spent in each mode from /proc/stat.
type CPU struct {
	dev Device
}

func NewCPU(dev Device) *CPU { return &CPU{dev: dev} }

func (c *CPU) Name() string { return "cpu" }

func (c *CPU) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "cat /proc/stat")
	if err != nil {
		return nil, err
	}
	cpus, err := parseCPU(body)
	if err != nil {
		return nil, err
	}
	return projectCPU(cpus), nil
}

func parseCPU(body string) (map[int]cpuStats, error) {
	matches := cpuLineRE.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Family: "cpu", Detail: "no cpu<N> lines in /proc/stat output"}
	}

	cpus := make(map[int]cpuStats, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, &ParseError{Family: "cpu", Detail: fmt.Sprintf("bad cpu id %q", m[1])}
		}

		cols := strings.Fields(m[2])
		if len(cols) < 4 {
			return nil, &ParseError{
				Family: "cpu",
				Detail: fmt.Sprintf("cpu%d has %d jiffie columns, need at least 4", id, len(cols)),
			}
		}
		jiffies := make([]float64, len(cols))
		for i, col := range cols {
			n, err := strconv.ParseUint(col, 10, 64)
			if err != nil {
				return nil, &ParseError{
					Family: "cpu",
					Detail: fmt.Sprintf("cpu%d column %d: %q is not a number", id, i, col),
				}
			}
			jiffies[i] = float64(n) / jiffiesPerSecond
		}

		cpus[id] = cpuStats{
			user:    jiffies[0],
			nice:    jiffies[1],
			system:  jiffies[2],
			idle:    jiffies[3],
			iowait:  optColumn(jiffies, 4),
			irq:     optColumn(jiffies, 5),
			softirq: optColumn(jiffies, 6),
			steal:   optColumn(jiffies, 7),
		}
	}
	return cpus, nil
}

// optColumn returns a pointer to column i, or nil when the kernel did not
// report that column.
func optColumn(jiffies []float64, i int) *float64 {
	if i < len(jiffies) {
		return &jiffies[i]
	}
	return nil
}

func projectCPU(cpus map[int]cpuStats) []expo.Series {
	ids := make([]int, 0, len(cpus))
	for id := range cpus {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var samples []expo.Sample
	for _, id := range ids {
		cpu := cpus[id]
		core := strconv.Itoa(id)
		mode := func(name string, v float64) expo.Sample {
			return expo.Sample{
				Labels: []expo.Label{{Name: "cpu", Value: core}, {Name: "mode", Value: name}},
				Value:  v,
			}
		}
		samples = append(samples,
			mode("user", cpu.user),
			mode("nice", cpu.nice),
			mode("system", cpu.system),
			mode("idle", cpu.idle),
		)
		// Optional modes are emitted only when the kernel reported them.
		if cpu.iowait != nil {
			samples = append(samples, mode("iowait", *cpu.iowait))
		}
		if cpu.irq != nil {
			samples = append(samples, mode("irq", *cpu.irq))
		}
		if cpu.softirq != nil {
			samples = append(samples, mode("softirq", *cpu.softirq))
		}
		if cpu.steal != nil {
			samples = append(samples, mode("steal", *cpu.steal))
		}
	}

	return []expo.Series{{
		Name:    "node_cpu_seconds_total",
		Help:    "Seconds the cpus spent in each mode",
		Type:    expo.Counter,
		Samples: samples,
	}}
}
