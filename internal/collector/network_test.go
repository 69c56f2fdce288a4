package collector

import (
	"context"
	"errors"
	"testing"
)

// procNetDev is real /proc/net/dev output; imq0/imq1 are idle
// pseudo-interfaces with all-zero counters.
const procNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop  fifo colls carrier compressed
    lo:   20551     116    0    0    0     0          0         0    20551     116    0    0    0     0       0          0
  eth0:1369176365 4125685    9    0    9     9          0         0 264555112  996099    0    0    0     0       0          0
 vlan1:38857540  128668    0    0    0     0          0      2820 114501528  166266    0    0    0     0       0          0
  eth1:68892432  621865    0    0    0 139217          0         0 1040059644 3691882    9    0    0     0       0          0
   br0:141360332  899095    0    0    0     0          0     12878 1303031977 4051507    0    0    0     0       0          0
  imq0:       0       0    0    0    0     0          0         0        0       0    0    0    0     0       0          0
  imq1:       0       0    0    0    0     0          0         0        0       0    0    0    0     0       0          0`

func TestParseNetwork(t *testing.T) {
	ifaces, err := parseNetwork(procNetDev)
	if err != nil {
		t.Fatalf("parseNetwork() error = %v", err)
	}
	if len(ifaces) != 7 {
		t.Fatalf("parsed %d interfaces, want 7", len(ifaces))
	}

	eth0 := ifaces["eth0"]
	if eth0.rxBytes != 1369176365 {
		t.Errorf("eth0 rxBytes = %d", eth0.rxBytes)
	}
	if eth0.rxErrs != 9 || eth0.rxFifo != 9 || eth0.rxFrame != 9 {
		t.Errorf("eth0 rx error counters = %+v", eth0)
	}
	if eth0.txBytes != 264555112 || eth0.txPackets != 996099 {
		t.Errorf("eth0 tx counters = %+v", eth0)
	}

	vlan1 := ifaces["vlan1"]
	if vlan1.rxMulticast != 2820 {
		t.Errorf("vlan1 rxMulticast = %d, want 2820", vlan1.rxMulticast)
	}

	// Idle pseudo-interfaces are parsed, not dropped: exclusion is the
	// projector's decision.
	imq0, ok := ifaces["imq0"]
	if !ok {
		t.Fatal("imq0 missing from parsed interfaces")
	}
	if imq0.rxBytes != 0 || imq0.txBytes != 0 {
		t.Errorf("imq0 counters = %+v", imq0)
	}
}

func TestParseNetwork_Malformed(t *testing.T) {
	for _, body := range []string{"", "Inter-|   Receive\n face |bytes"} {
		_, err := parseNetwork(body)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("parseNetwork(%q) error = %v, want *ParseError", body, err)
		}
	}
}

func TestProjectNetwork_ZeroSuppressionPerDirection(t *testing.T) {
	series := projectNetwork(map[string]netInterface{
		"eth0": {rxBytes: 100, txBytes: 200},
		"imq0": {},                        // idle both ways: absent from both series
		"ppp0": {rxBytes: 0, txBytes: 50}, // only the active direction appears
	})

	rx := findSeries(t, series, "node_network_receive_bytes_total")
	if len(rx.Samples) != 1 {
		t.Fatalf("receive has %d samples, want 1", len(rx.Samples))
	}
	if rx.Samples[0].Labels[0].Value != "eth0" {
		t.Errorf("receive sample device = %q", rx.Samples[0].Labels[0].Value)
	}

	tx := findSeries(t, series, "node_network_transmit_bytes_total")
	if len(tx.Samples) != 2 {
		t.Fatalf("transmit has %d samples, want 2", len(tx.Samples))
	}
	if tx.Samples[0].Labels[0].Value != "eth0" || tx.Samples[1].Labels[0].Value != "ppp0" {
		t.Errorf("transmit devices = %v, %v", tx.Samples[0].Labels, tx.Samples[1].Labels)
	}
}

func TestProjectNetwork_LexicographicOrder(t *testing.T) {
	series := projectNetwork(map[string]netInterface{
		"vlan2": {rxBytes: 1, txBytes: 1},
		"br0":   {rxBytes: 1, txBytes: 1},
		"eth1":  {rxBytes: 1, txBytes: 1},
	})
	rx := findSeries(t, series, "node_network_receive_bytes_total")
	wantOrder := []string{"br0", "eth1", "vlan2"}
	for i, want := range wantOrder {
		if got := rx.Samples[i].Labels[0].Value; got != want {
			t.Errorf("sample %d device = %q, want %q", i, got, want)
		}
	}
}

func TestNetwork_Collect(t *testing.T) {
	series, err := NewNetwork(commandDevice(procNetDev)).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	rx := findSeries(t, series, "node_network_receive_bytes_total")
	// 7 parsed interfaces minus the two all-zero imq devices.
	if len(rx.Samples) != 5 {
		t.Errorf("receive has %d samples, want 5", len(rx.Samples))
	}
}
