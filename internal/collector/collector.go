package collector

import (
	"context"
	"fmt"

	"github.com/tomato-exporter/tomato-exporter/internal/device"
	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// Device is the slice of the transport that collectors use. Satisfied by
// *device.Client; tests substitute fakes.
type Device interface {
	Request(ctx context.Context, endpoint string, fields []device.Field) (string, error)
	RunCommand(ctx context.Context, command string) (string, error)
}

// Collector is implemented by every metric family. Collect returns the
// family's series for one scrape cycle, or a *device.TransportError /
// *ParseError describing why the family has nothing to report.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]expo.Series, error)
}

// ParseError reports device output that did not match the expected textual
// shape. A reply that parses to nothing is an error, never an empty result:
// a malformed device must not silently become a set of zero-valued metrics.
type ParseError struct {
	Family string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Family, e.Detail)
}

// New returns the collector for the given family name.
func New(family string, dev Device) (Collector, error) {
	switch family {
	case "bandwidth":
		return NewBandwidth(dev), nil
	case "cpu":
		return NewCPU(dev), nil
	case "load":
		return NewLoad(dev), nil
	case "memory":
		return NewMemory(dev), nil
	case "network":
		return NewNetwork(dev), nil
	case "time":
		return NewTime(dev), nil
	case "uname":
		return NewUname(dev), nil
	default:
		return nil, fmt.Errorf("collector: unsupported family %q", family)
	}
}
