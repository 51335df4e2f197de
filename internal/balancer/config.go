package balancer

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxUpstreams caps the upstream pool size. The dispatcher itself has no
// limit; this is a configuration sanity bound.
const MaxUpstreams = 256

// Config describes one balancer instance. All fields are immutable after
// Validate has accepted them.
type Config struct {
	// Listen is the host:port the relay socket binds to.
	Listen string `yaml:"listen"`

	// Upstreams lists the destinations in rotation order. Order is
	// significant: both round-robin and hash-modulo selection depend
	// on it.
	Upstreams []string `yaml:"upstreams"`

	// HandleGELF enables affinity routing for GELF chunk datagrams.
	HandleGELF bool `yaml:"handle_gelf"`

	// SendBuffer overrides the socket send buffer size in bytes.
	// Zero leaves the kernel default in place.
	SendBuffer int `yaml:"send_buffer"`

	// RecvBuffer overrides the socket receive buffer size in bytes.
	RecvBuffer int `yaml:"recv_buffer"`

	// StatusAddr is the optional HTTP listen address for /health and
	// /metrics. Empty disables the status server.
	StatusAddr string `yaml:"status_addr"`

	listenAddr    *net.UDPAddr
	upstreamAddrs []*net.UDPAddr
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration and resolves all endpoints. It must be
// called (directly or via LoadConfig) before the config is handed to a
// Server.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("no listen address defined")
	}

	listenAddr, err := net.ResolveUDPAddr("udp", c.Listen)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	c.listenAddr = listenAddr

	if len(c.Upstreams) == 0 {
		return fmt.Errorf("no upstream addresses defined")
	}
	if len(c.Upstreams) > MaxUpstreams {
		return fmt.Errorf("too many upstreams: %d (limit %d)", len(c.Upstreams), MaxUpstreams)
	}

	c.upstreamAddrs = make([]*net.UDPAddr, 0, len(c.Upstreams))
	for _, raw := range c.Upstreams {
		addr, err := net.ResolveUDPAddr("udp", raw)
		if err != nil {
			return fmt.Errorf("invalid upstream address %q: %w", raw, err)
		}
		c.upstreamAddrs = append(c.upstreamAddrs, addr)
	}

	if c.SendBuffer < 0 {
		return fmt.Errorf("invalid send buffer value %d", c.SendBuffer)
	}
	if c.RecvBuffer < 0 {
		return fmt.Errorf("invalid recv buffer value %d", c.RecvBuffer)
	}

	return nil
}

// ListenAddr returns the resolved listen endpoint. Only valid after
// Validate succeeded.
func (c *Config) ListenAddr() *net.UDPAddr {
	return c.listenAddr
}

// UpstreamAddrs returns the resolved upstream endpoints in configured
// order. Only valid after Validate succeeded.
func (c *Config) UpstreamAddrs() []*net.UDPAddr {
	return c.upstreamAddrs
}
