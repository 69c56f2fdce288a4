// Package collector implements one scraper per metric family plus the
// registry that fans them out.
//
// Each family (bandwidth, cpu, load, memory, network, time, uname) pairs a
// pure parser (raw device text in, typed measurement out, *ParseError on
// anything that does not match) with a pure projector that maps the
// measurement to named series in a deterministic order. Collect binds the
// pair to the device transport; no collector keeps state between cycles.
//
// Registry.Gather runs every registered collector in its own goroutine
// under a per-collector timeout, waits for all of them, and merges the
// results in registration order. A failing family is excluded from the
// merged series but still appears in the
// node_scrape_collector_duration_seconds and node_scrape_collector_success
// meta-series; the cycle as a whole never fails.
package collector
