// Package expo models a Prometheus text exposition document and renders it.
// A Series is one named metric with help text, type, and samples; a Sample
// is one labeled observation with an optional timestamp.
//
// Render(series) produces the exact wire text: HELP/TYPE headers, one line
// per sample, label order preserved as given, no trailing newline after the
// last series. Collectors are responsible for deterministic sample order;
// this package never sorts.
package expo
