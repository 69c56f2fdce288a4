package collector

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// netLineRE matches one device line of /proc/net/dev: the interface name
// followed by 16 unsigned counters (8 receive, 8 transmit).
var netLineRE = regexp.MustCompile(` *([a-z0-9]+): *([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+) +([0-9]+)`)

// netInterface holds the 16 /proc/net/dev counters for one interface.
type netInterface struct {
	rxBytes      uint64
	rxPackets    uint64
	rxErrs       uint64
	rxDrop       uint64
	rxFifo       uint64
	rxFrame      uint64
	rxCompressed uint64
	rxMulticast  uint64
	txBytes      uint64
	txPackets    uint64
	txErrs       uint64
	txDrop       uint64
	txFifo       uint64
	txColls      uint64
	txCarrier    uint64
	txCompressed uint64
}

// Network reports per-interface byte counters from /proc/net/dev.
type Network struct {
	dev Device
}

func NewNetwork(dev Device) *Network { return &Network{dev: dev} }

func (c *Network) Name() string { return "network" }

func (c *Network) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "cat /proc/net/dev")
	if err != nil {
		return nil, err
	}
	ifaces, err := parseNetwork(body)
	if err != nil {
		return nil, err
	}
	return projectNetwork(ifaces), nil
}

func parseNetwork(body string) (map[string]netInterface, error) {
	matches := netLineRE.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Family: "network", Detail: "no interface lines in /proc/net/dev output"}
	}

	ifaces := make(map[string]netInterface, len(matches))
	for _, m := range matches {
		counters := make([]uint64, 16)
		for i := range counters {
			n, err := strconv.ParseUint(m[i+2], 10, 64)
			if err != nil {
				return nil, &ParseError{
					Family: "network",
					Detail: fmt.Sprintf("interface %s counter %d: %q is not a number", m[1], i, m[i+2]),
				}
			}
			counters[i] = n
		}
		ifaces[m[1]] = netInterface{
			rxBytes:      counters[0],
			rxPackets:    counters[1],
			rxErrs:       counters[2],
			rxDrop:       counters[3],
			rxFifo:       counters[4],
			rxFrame:      counters[5],
			rxCompressed: counters[6],
			rxMulticast:  counters[7],
			txBytes:      counters[8],
			txPackets:    counters[9],
			txErrs:       counters[10],
			txDrop:       counters[11],
			txFifo:       counters[12],
			txColls:      counters[13],
			txCarrier:    counters[14],
			txCompressed: counters[15],
		}
	}
	return ifaces, nil
}

// projectNetwork emits receive and transmit byte counters per interface, in
// lexicographic device order. A zero-valued counter is suppressed for that
// direction only, so idle pseudo-interfaces (imq0, disabled radios) do not
// appear as permanent zero counters while a one-directional interface still
// reports its active side.
func projectNetwork(ifaces map[string]netInterface) []expo.Series {
	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)

	var rx, tx []expo.Sample
	for _, name := range names {
		iface := ifaces[name]
		if iface.rxBytes > 0 {
			rx = append(rx, deviceSample(name, float64(iface.rxBytes)))
		}
		if iface.txBytes > 0 {
			tx = append(tx, deviceSample(name, float64(iface.txBytes)))
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

func deviceSample(name string, v float64) expo.Sample {
	return expo.Sample{
		Labels: []expo.Label{{Name: "device", Value: name}},
		Value:  v,
	}
}
