package collector

import (
	"context"
	"regexp"

	"github.com/tomato-exporter/tomato-exporter/internal/expo"
)

// unameRE matches `uname -a` output positionally. The version field sits
// between fixed-format neighbors and conventionally contains spaces (build
// number plus timestamp), so it is captured greedily and the machine and
// trailing OS-name fields anchor it from the right.
var unameRE = regexp.MustCompile(`([a-zA-Z]+) ([a-zA-Z0-9\-_]+) ([0-9.a-z\-]+) (.*) ([a-zA-Z0-9\-_]+) ([a-zA-Z0-9]+)`)

// unameInfo is the parsed kernel identity. The device never reports a
// domain name, so domainname carries the conventional "(none)" sentinel.
type unameInfo struct {
	sysname    string
	nodename   string
	release    string
	version    string
	machine    string
	domainname string
}

// Uname reports the kernel identity as a labeled info gauge.
type Uname struct {
	dev Device
}

func NewUname(dev Device) *Uname { return &Uname{dev: dev} }

func (c *Uname) Name() string { return "uname" }

func (c *Uname) Collect(ctx context.Context) ([]expo.Series, error) {
	body, err := c.dev.RunCommand(ctx, "uname -a")
	if err != nil {
		return nil, err
	}
	info, err := parseUname(body)
	if err != nil {
		return nil, err
	}
	return projectUname(info), nil
}

func parseUname(body string) (unameInfo, error) {
	m := unameRE.FindStringSubmatch(body)
	if m == nil {
		return unameInfo{}, &ParseError{Family: "uname", Detail: "output does not look like `uname -a`"}
	}
	return unameInfo{
		sysname:    m[1],
		nodename:   m[2],
		release:    m[3],
		version:    m[4],
		machine:    m[5],
		domainname: "(none)",
	}, nil
}

func projectUname(info unameInfo) []expo.Series {
	return []expo.Series{{
		Name: "node_uname_info",
		Help: "Labeled system information as provided by the uname system call",
		Type: expo.Gauge,
		Samples: []expo.Sample{{
			Labels: []expo.Label{
				{Name: "domainname", Value: info.domainname},
				{Name: "machine", Value: info.machine},
				{Name: "nodename", Value: info.nodename},
				{Name: "release", Value: info.release},
				{Name: "sysname", Value: info.sysname},
				{Name: "version", Value: info.version},
			},
			Value: 1,
		}},
	}}
}
