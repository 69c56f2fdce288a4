package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tomato-exporter/tomato-exporter/internal/device"
	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// bandwidthCounters is one interface's cumulative rx/tx byte counters.
type bandwidthCounters struct {
	rx uint64
	tx uint64
}

// Bandwidth reports per-interface byte counters from the device's netdev
// CGI action. The device answers with a JavaScript object literal, not
// JSON: single-quoted interface names, bare rx/tx keys, 0x-prefixed hex
// values. normalizeNetdev rewrites that into strict JSON before decoding.
type Bandwidth struct {
	dev Device
}

func NewBandwidth(dev Device) *Bandwidth { return &Bandwidth{dev: dev} }

func (c *Bandwidth) Name() string { return "bandwidth" }

func (c *Bandwidth) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.Request(ctx, "update.cgi", []device.Field{{Name: "exec", Value: "netdev"}})
	if err != nil {
		return nil, err
	}
	counters, err := parseBandwidth(body)
	if err != nil {
		return nil, err
	}
	return projectBandwidth(counters), nil
}

func parseBandwidth(body string) (map[string]bandwidthCounters, error) {
	normalized, err := normalizeNetdev(body)
	if err != nil {
		return nil, err
	}

	var raw map[string]struct {
		Rx string `json:"rx"`
		Tx string `json:"tx"`
	}
	if err := json.Unmarshal([]byte(normalized), &raw); err != nil {
		return nil, &ParseError{Family: "bandwidth", Detail: fmt.Sprintf("normalized netdev is not valid JSON: %v", err)}
	}
	if len(raw) == 0 {
		return nil, &ParseError{Family: "bandwidth", Detail: "netdev object is empty"}
	}

	counters := make(map[string]bandwidthCounters, len(raw))
	for name, c := range raw {
		rx, err := parseHex(c.Rx)
		if err != nil {
			return nil, &ParseError{Family: "bandwidth", Detail: fmt.Sprintf("interface %s rx: %v", name, err)}
		}
		tx, err := parseHex(c.Tx)
		if err != nil {
			return nil, &ParseError{Family: "bandwidth", Detail: fmt.Sprintf("interface %s tx: %v", name, err)}
		}
		counters[name] = bandwidthCounters{rx: rx, tx: tx}
	}
	return counters, nil
}

// parseHex decodes a 0x-prefixed hex literal as an unsigned 64-bit integer.
func parseHex(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, fmt.Errorf("%q is not a 0x-prefixed hex literal", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a 0x-prefixed hex literal", s)
	}
	return v, nil
}

// normalizeNetdev rewrites the device's `netdev={...};` object literal into
// strict JSON. It tokenizes rather than doing blind substring replacement:
// single-quoted strings become double-quoted, and bare words (the rx/tx
// keys and 0x hex values) are wrapped in quotes wherever they appear as
// whole tokens, so an interface whose name merely contains "rx" or "tx"
// survives intact.
func normalizeNetdev(body string) (string, error) {
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return "", &ParseError{Family: "bandwidth", Detail: "no object literal in netdev response"}
	}
	in := body[start : end+1]

	var out strings.Builder
	out.Grow(len(in) + len(in)/4)
	for i := 0; i < len(in); {
		c := in[i]
		switch {
		case c == '\'':
			j := strings.IndexByte(in[i+1:], '\'')
			if j < 0 {
				return "", &ParseError{Family: "bandwidth", Detail: "unterminated single-quoted string"}
			}
			out.WriteByte('"')
			out.WriteString(in[i+1 : i+1+j])
			out.WriteByte('"')
			i += j + 2

		case isWordByte(c):
			j := i
			for j < len(in) && isWordByte(in[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(in[i:j])
			out.WriteByte('"')
			i = j

		case c == '{' || c == '}' || c == ':' || c == ',':
			out.WriteByte(c)
			i++

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			out.WriteByte(c)
			i++

		default:
			return "", &ParseError{
				Family: "bandwidth",
				Detail: fmt.Sprintf("unexpected character %q in netdev object", c),
			}
		}
	}
	return out.String(), nil
}

// isWordByte reports whether b can appear in a bare key or hex literal.
func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '.' || b == '-'
}

// projectBandwidth mirrors projectNetwork: byte counters per interface in
// lexicographic order, zero counters suppressed per direction.
func projectBandwidth(counters map[string]bandwidthCounters) []expo.Series {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	var rx, tx []expo.Sample
	for _, name := range names {
		c := counters[name]
		if c.rx > 0 {
			rx = append(rx, deviceSample(name, float64(c.rx)))
		}
		if c.tx > 0 {
			tx = append(tx, deviceSample(name, float64(c.tx)))
		}
	}

	return []expo.Series{
		{
			Name:    "node_network_receive_bytes_total",
			Help:    "Network device statistic receive_bytes",
			Type:    expo.Counter,
			Samples: rx,
		},
		{
			Name:    "node_network_transmit_bytes_total",
			Help:    "Network device statistic transmit_bytes",
			Type:    expo.Counter,
			Samples: tx,
		},
	}
}
