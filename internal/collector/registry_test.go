package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// stubCollector returns fixed series or a fixed error.
type stubCollector struct {
	name   string
	series []expo.Series
	err    error
	delay  time.Duration
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(ctx context.Context) ([]expo.Series, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.series, s.err
}

func gaugeSeries(name string, v float64) expo.Series {
	return expo.Series{
		Name:    name,
		Help:    "h",
		Type:    expo.Gauge,
		Samples: []expo.Sample{{Value: v}},
	}
}

func metaSample(t *testing.T, series []expo.Series, metaName, collector string) expo.Sample {
	t.Helper()
	s := findSeries(t, series, metaName)
	for _, sample := range s.Samples {
		for _, l := range sample.Labels {
			if l.Name == "collector" && l.Value == collector {
				return sample
			}
		}
	}
	t.Fatalf("%s has no sample for collector %q", metaName, collector)
	return expo.Sample{}
}

func TestGather_MergesAllCollectors(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "a", series: []expo.Series{gaugeSeries("metric_a", 1)}},
		&stubCollector{name: "b", series: []expo.Series{gaugeSeries("metric_b", 2)}},
	)
	series := reg.Gather(context.Background())

	findSeries(t, series, "metric_a")
	findSeries(t, series, "metric_b")
	if got := metaSample(t, series, "node_scrape_collector_success", "a").Value; got != 1 {
		t.Errorf("success{a} = %v, want 1", got)
	}
	if got := metaSample(t, series, "node_scrape_collector_success", "b").Value; got != 1 {
		t.Errorf("success{b} = %v, want 1", got)
	}
}

func TestGather_FailureIsolated(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "ok", series: []expo.Series{gaugeSeries("metric_ok", 1)}},
		&stubCollector{name: "bad", err: &ParseError{Family: "bad", Detail: "boom"}},
	)
	series := reg.Gather(context.Background())

	// The healthy collector's series must survive the other's failure.
	findSeries(t, series, "metric_ok")
	if got := metaSample(t, series, "node_scrape_collector_success", "bad").Value; got != 0 {
		t.Errorf("success{bad} = %v, want 0", got)
	}
	if got := metaSample(t, series, "node_scrape_collector_success", "ok").Value; got != 1 {
		t.Errorf("success{ok} = %v, want 1", got)
	}
	// The failed family contributes no data series.
	for _, s := range series {
		if s.Name == "metric_bad" {
			t.Error("failed collector's series leaked into the document")
		}
	}
}

func TestGather_AllFailStillProducesDocument(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "a", err: errors.New("down")},
		&stubCollector{name: "b", err: errors.New("down")},
	)
	series := reg.Gather(context.Background())
	// Only the two meta-series remain, and the document is still valid.
	if len(series) != 2 {
		t.Fatalf("%d series, want 2 meta-series", len(series))
	}
	success := findSeries(t, series, "node_scrape_collector_success")
	for _, sample := range success.Samples {
		if sample.Value != 0 {
			t.Errorf("success sample = %+v, want 0", sample)
		}
	}
}

func TestGather_MetaSeriesInRegistrationOrder(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "zeta"},
		&stubCollector{name: "alpha", delay: 10 * time.Millisecond},
		&stubCollector{name: "mid"},
	)
	series := reg.Gather(context.Background())
	duration := findSeries(t, series, "node_scrape_collector_duration_seconds")
	wantOrder := []string{"zeta", "alpha", "mid"}
	if len(duration.Samples) != len(wantOrder) {
		t.Fatalf("%d duration samples, want %d", len(duration.Samples), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got := duration.Samples[i].Labels[0].Value; got != want {
			t.Errorf("duration sample %d collector = %q, want %q (completion order must not matter)", i, got, want)
		}
	}
}

func TestGather_CoalescesSameNamedSeries(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "network", series: []expo.Series{{
			Name: "node_network_receive_bytes_total",
			Help: "Network device statistic receive_bytes",
			Type: expo.Counter,
			Samples: []expo.Sample{
				{Labels: []expo.Label{{Name: "device", Value: "eth0"}}, Value: 1},
			},
		}}},
		&stubCollector{name: "bandwidth", series: []expo.Series{{
			Name: "node_network_receive_bytes_total",
			Help: "Network device statistic receive_bytes",
			Type: expo.Counter,
			Samples: []expo.Sample{
				{Labels: []expo.Label{{Name: "device", Value: "br0"}}, Value: 2},
			},
		}}},
	)
	series := reg.Gather(context.Background())

	count := 0
	for _, s := range series {
		if s.Name == "node_network_receive_bytes_total" {
			count++
			if len(s.Samples) != 2 {
				t.Errorf("coalesced series has %d samples, want 2", len(s.Samples))
			}
		}
	}
	if count != 1 {
		t.Errorf("series name appears %d times, want exactly once", count)
	}
}

func TestGather_TimeoutBoundsHungCollector(t *testing.T) {
	reg := NewRegistry(50*time.Millisecond,
		&stubCollector{name: "hung", delay: 10 * time.Second},
		&stubCollector{name: "fast", series: []expo.Series{gaugeSeries("metric_fast", 1)}},
	)

	done := make(chan []expo.Series, 1)
	go func() { done <- reg.Gather(context.Background()) }()

	select {
	case series := <-done:
		findSeries(t, series, "metric_fast")
		if got := metaSample(t, series, "node_scrape_collector_success", "hung").Value; got != 0 {
			t.Errorf("success{hung} = %v, want 0", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Gather did not return; hung collector stalled the cycle")
	}
}

func TestGather_Reentrant(t *testing.T) {
	reg := NewRegistry(0,
		&stubCollector{name: "a", series: []expo.Series{gaugeSeries("metric_a", 1)}},
	)

	// Overlapping cycles share no state; each must produce the same data
	// series. (Durations naturally vary, so only data series compare.)
	done := make(chan []expo.Series, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- reg.Gather(context.Background()) }()
	}
	for i := 0; i < 4; i++ {
		series := <-done
		s := findSeries(t, series, "metric_a")
		if len(s.Samples) != 1 || s.Samples[0].Value != 1 {
			t.Errorf("concurrent Gather corrupted series: %+v", s)
		}
		if got := metaSample(t, series, "node_scrape_collector_success", "a").Value; got != 1 {
			t.Errorf("success{a} = %v, want 1", got)
		}
	}
}
