// Package config holds the startup configuration of mimetest. It is built
// once before the server starts and never changed afterwards.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = "3000"
	DefaultShutdownTimeout = 5 * time.Second
)

var (
	ErrTooManyArgs  = errors.New("config: expected at most two arguments: [host] [port]")
	ErrInvalidPort  = errors.New("config: invalid port")
	ErrHTTP3Partial = errors.New("config: http3 needs both a certificate and a key")
)

type Config struct {
	Host string
	Port string

	// CorrectMIMEs and Download apply to every route, see routes.Options.
	CorrectMIMEs bool
	Download     bool

	// OTLPEndpoint is a host:port of an OTLP gRPC collector. Empty disables export.
	OTLPEndpoint string

	HTTP3CertFile string
	HTTP3KeyFile  string

	ShutdownTimeout time.Duration
}

func Default() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		CorrectMIMEs:    true,
		Download:        true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// ApplyArgs takes the positional arguments: host first, then port.
// Missing arguments keep their current value.
func (c *Config) ApplyArgs(args []string) error {
	if len(args) > 2 {
		return ErrTooManyArgs
	}
	if len(args) > 0 {
		c.Host = args[0]
	}
	if len(args) > 1 {
		c.Port = args[1]
	}

	return nil
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, c.Port)
	}

	if (c.HTTP3CertFile == "") != (c.HTTP3KeyFile == "") {
		return ErrHTTP3Partial
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	return nil
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
