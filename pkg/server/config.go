package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/vango-dev/toast/pkg/metrics"
)

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:4310").
	// Default: "localhost:4310".
	Address string

	// ReadTimeout and WriteTimeout bound plain HTTP requests. They do not
	// apply to stream connections once upgraded.
	// Default: 10 seconds each.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 5 seconds.
	ShutdownTimeout time.Duration

	// AllowedOrigins lists cross-origin callers for the API and the stream.
	// "*" allows every origin. Same-origin requests are always allowed.
	AllowedOrigins []string

	// CheckOrigin overrides the WebSocket origin check built from
	// AllowedOrigins.
	CheckOrigin func(r *http.Request) bool

	// MaxClients is the maximum number of concurrent stream clients.
	// 0 means no limit.
	MaxClients int

	// ClientBuffer is the number of frames queued per stream client before
	// it is disconnected as too slow.
	// Default: 32.
	ClientBuffer int

	// PingInterval is the time between WebSocket pings.
	// Default: 30 seconds.
	PingInterval time.Duration

	// StreamWriteTimeout bounds a single frame write to a stream client.
	// Default: 10 seconds.
	StreamWriteTimeout time.Duration

	// Metrics serves Prometheus metrics at MetricsPath when set.
	Metrics *metrics.Collector

	// MetricsPath is where metrics are served.
	// Default: "/metrics".
	MetricsPath string

	// TracerName is the OpenTelemetry instrumentation name for request spans.
	// Default: "vango/toast/server".
	TracerName string

	// Logger is the server logger.
	// Default: slog.Default() tagged with component=server.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:            "localhost:4310",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		ClientBuffer:       32,
		PingInterval:       30 * time.Second,
		StreamWriteTimeout: 10 * time.Second,
		MetricsPath:        "/metrics",
		TracerName:         "vango/toast/server",
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.AllowedOrigins = slices.Clone(c.AllowedOrigins)
	return &clone
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	out := c.Clone()
	if out == nil {
		out = DefaultConfig()
	}
	defaults := DefaultConfig()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ClientBuffer <= 0 {
		out.ClientBuffer = defaults.ClientBuffer
	}
	if out.PingInterval == 0 {
		out.PingInterval = defaults.PingInterval
	}
	if out.StreamWriteTimeout == 0 {
		out.StreamWriteTimeout = defaults.StreamWriteTimeout
	}
	if out.MetricsPath == "" {
		out.MetricsPath = defaults.MetricsPath
	}
	if out.TracerName == "" {
		out.TracerName = defaults.TracerName
	}
	if out.Logger == nil {
		out.Logger = slog.Default().With("component", "server")
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = out.originAllowed
	}
	return out
}

// originAllowed accepts same-origin requests and the configured origins.
func (c *Config) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || SameOriginCheck(r) {
		return true
	}
	return slices.Contains(c.AllowedOrigins, "*") || slices.Contains(c.AllowedOrigins, origin)
}

// SameOriginCheck validates that the request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	return originURL.Host == host
}
