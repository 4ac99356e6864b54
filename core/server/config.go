package server

import "time"

// Config holds server configuration with environment variable support.
// An empty Addr disables the server.
type Config struct {
	Addr              string        `env:"METRICS_ADDR" envDefault:""`
	ReadHeaderTimeout time.Duration `env:"METRICS_READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"METRICS_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"METRICS_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"METRICS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether an address is configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// NewFromConfig creates a Server from configuration.
// Additional options can override config values.
func NewFromConfig(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Addr == "" {
		return nil, ErrMissingAddress
	}

	configOpts := []Option{
		WithReadHeaderTimeout(cfg.ReadHeaderTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
		WithIdleTimeout(cfg.IdleTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}

	return New(cfg.Addr, append(configOpts, opts...)...), nil
}
