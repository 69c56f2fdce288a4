package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// Registry holds the configured collectors and runs one scrape cycle across
// all of them. It keeps no per-cycle state, so concurrent Gather calls are
// safe: the device is the only shared resource and tolerates duplicate
// concurrent polls.
type Registry struct {
	collectors []Collector
	timeout    time.Duration
}

// outcome is one collector's result for one cycle.
type outcome struct {
	name     string
	duration time.Duration
	series   []expo.Series
	err      error
}

// NewRegistry builds a Registry. timeout bounds each collector's device
// call; zero disables the bound, preserving the unbounded wait of the
// device's own request cycle.
func NewRegistry(timeout time.Duration, collectors ...Collector) *Registry {
	return &Registry{collectors: collectors, timeout: timeout}
}

// Gather runs every collector concurrently, waits for all of them, and
// merges their series with the two per-collector meta-series appended.
// A failing collector is logged and reported via its success flag; it never
// fails the cycle. Gather itself cannot fail: total collector failure still
// yields a valid document of meta-series.
func (r *Registry) Gather(ctx context.Context) []expo.Series {
	outcomes := make([]outcome, len(r.collectors))

	var wg sync.WaitGroup
	for i, c := range r.collectors {
		wg.Add(1)
		go func(i int, c Collector) {
			defer wg.Done()
			cctx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}
			start := time.Now()
			series, err := c.Collect(cctx)
			outcomes[i] = outcome{
				name:     c.Name(),
				duration: time.Since(start),
				series:   series,
				err:      err,
			}
		}(i, c)
	}
	wg.Wait()

	return r.merge(outcomes)
}

// merge flattens the outcomes in registration order and appends the
// duration and success meta-series. Series with the same name from
// different collectors (network and bandwidth both report the
// node_network byte counters) are coalesced into one series so every name
// appears once per document.
func (r *Registry) merge(outcomes []outcome) []expo.Series {
	var merged []expo.Series
	index := make(map[string]int)

	for _, o := range outcomes {
		if o.err != nil {
			slog.Warn("collector failed", "collector", o.name, "err", o.err)
			continue
		}
		for _, s := range o.series {
			if at, ok := index[s.Name]; ok {
				merged[at].Samples = append(merged[at].Samples, s.Samples...)
				continue
			}
			index[s.Name] = len(merged)
			merged = append(merged, s)
		}
	}

	duration := expo.Series{
		Name: "node_scrape_collector_duration_seconds",
		Help: "Duration of a collector scrape.",
		Type: expo.Gauge,
	}
	success := expo.Series{
		Name: "node_scrape_collector_success",
		Help: "Whether a collector succeeded.",
		Type: expo.Gauge,
	}
	for _, o := range outcomes {
		label := []expo.Label{{Name: "collector", Value: o.name}}
		duration.Samples = append(duration.Samples, expo.Sample{
			Labels: label,
			Value:  o.duration.Seconds(),
		})
		ok := 1.0
		if o.err != nil {
			ok = 0
		}
		success.Samples = append(success.Samples, expo.Sample{
			Labels: label,
			Value:  ok,
		})
	}

	return append(merged, duration, success)
}
