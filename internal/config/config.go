package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/toast"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "toast.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "toast.yaml"

	// DefaultAddress is the default listen address of the server.
	DefaultAddress = "localhost:4310"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultMetricsPath is where metrics are exposed.
	DefaultMetricsPath = "/metrics"

	// DefaultMetricsNamespace prefixes every metric name.
	DefaultMetricsNamespace = "toast"

	// DefaultMaxClients bounds concurrent stream connections.
	DefaultMaxClients = 256

	// DefaultClientBuffer is the per-client frame queue length.
	DefaultClientBuffer = 32
)

// configNames lists the file names Load looks for, in order.
var configNames = []string{ConfigFileName, YAMLConfigFileName, "toast.yml"}

// Config represents a complete toast.json or toast.yaml file.
type Config struct {
	// Name identifies the deployment in logs.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server contains HTTP and stream settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Defaults seeds the store's default options.
	Defaults DefaultsConfig `json:"defaults,omitempty" yaml:"defaults,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings. Timeouts are Go duration
// strings such as "10s".
type ServerConfig struct {
	Address         string   `json:"address,omitempty" yaml:"address,omitempty"`
	ReadTimeout     string   `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout    string   `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	ShutdownTimeout string   `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
	AllowedOrigins  []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`

	// MaxClients bounds concurrent WebSocket clients. 0 means the default.
	MaxClients int `json:"maxClients,omitempty" yaml:"maxClients,omitempty"`

	// ClientBuffer is the number of frames queued per client before it is
	// dropped as too slow.
	ClientBuffer int `json:"clientBuffer,omitempty" yaml:"clientBuffer,omitempty"`
}

// DefaultsConfig mirrors toast.DefaultsPatch in file form.
// Unset fields keep the built-in defaults.
type DefaultsConfig struct {
	Position       string            `json:"position,omitempty" yaml:"position,omitempty"`
	Duration       *string           `json:"duration,omitempty" yaml:"duration,omitempty"`
	DismissOnClick *bool             `json:"dismissOnClick,omitempty" yaml:"dismissOnClick,omitempty"`
	Icons          map[string]string `json:"icons,omitempty" yaml:"icons,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName overrides the instrumentation name used for spans.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			ReadTimeout:     "10s",
			WriteTimeout:    "10s",
			ShutdownTimeout: "5s",
			MaxClients:      DefaultMaxClients,
			ClientBuffer:    DefaultClientBuffer,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
			Path:      DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for toast.json, then toast.yaml and toast.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E101").
		WithDetail("No toast.json or toast.yaml found in " + dir).
		WithSuggestion("Run 'toastd config init' to create one")
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	unmarshal, err := decoderFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'toastd config init' to create one")
		}
		return nil, errors.New("E102").WithLocation(path, 0).Wrap(err)
	}

	cfg := New()
	if err := unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithLocation(path, errorLine(err)).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		if te, ok := err.(*errors.ToastError); ok && te.Location == nil {
			te.WithLocation(path, 0)
		}
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as JSON or YAML
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	} else {
		return unsupported(path)
	}
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E102").WithLocation(path, 0).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "5s"
	}
	if c.Server.MaxClients == 0 {
		c.Server.MaxClients = DefaultMaxClients
	}
	if c.Server.ClientBuffer == 0 {
		c.Server.ClientBuffer = DefaultClientBuffer
	}

	// Logging
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Checked in file order; the first bad field is the one reported.
	timeouts := []struct{ field, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if _, err := parseDuration(t.value); err != nil {
			return invalid(t.field, t.value, err)
		}
	}

	if c.Server.MaxClients < 0 {
		return errors.New("E103").
			WithDetailf("server.maxClients must not be negative, got %d", c.Server.MaxClients)
	}
	if c.Server.ClientBuffer < 0 {
		return errors.New("E103").
			WithDetailf("server.clientBuffer must not be negative, got %d", c.Server.ClientBuffer)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.New("E103").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E103").
			WithDetailf("log.format %q must be text or json", c.Log.Format)
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E103").
			WithDetailf("metrics.path %q must start with /", c.Metrics.Path)
	}

	_, err := c.DefaultsPatch()
	return err
}

// DefaultsPatch converts the defaults section into a patch for
// toast.Store.SetDefaults.
func (c *Config) DefaultsPatch() (toast.DefaultsPatch, error) {
	var patch toast.DefaultsPatch
	d := c.Defaults

	if d.Position != "" {
		pos, err := toast.ParsePosition(d.Position)
		if err != nil {
			return patch, errors.New("E202").
				WithDetailf("defaults.position %q is not a position", d.Position).
				WithSuggestion("Use one of top-start, top-center, top-end, middle-start ... bottom-end")
		}
		patch.Position = &pos
	}

	if d.Duration != nil {
		dur, err := parseDuration(*d.Duration)
		if err != nil {
			return patch, invalid("defaults.duration", *d.Duration, err)
		}
		patch.Duration = &dur
	}

	if d.DismissOnClick != nil {
		v := *d.DismissOnClick
		patch.DismissOnClick = &v
	}

	if len(d.Icons) > 0 {
		patch.Icons = make(map[toast.Type]toast.Icon, len(d.Icons))
		for name, ref := range d.Icons {
			typ, err := toast.ParseType(name)
			if err != nil {
				return patch, errors.New("E201").
					WithDetailf("defaults.icons has unknown type %q", name)
			}
			icon, err := toast.ParseIcon(ref)
			if err != nil {
				return patch, errors.New("E207").
					WithDetailf("defaults.icons.%s: %q", name, ref).
					WithSuggestion(`Use "builtin:<name>", "url:<address>" or "none"`)
			}
			patch.Icons[typ] = icon
		}
	}

	return patch, nil
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ReadTimeout)
	return d
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := parseDuration(c.Server.WriteTimeout)
	return d
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout)
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the first one holding a
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No toast.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'toastd config init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errNegative
	}
	return d, nil
}

var errNegative = errors.Newf(errors.CategoryConfig, "duration must not be negative")

func invalid(field, value string, err error) *errors.ToastError {
	return errors.New("E103").
		WithDetailf("%s %q: %v", field, value, err).
		WithSuggestion(`Use a Go duration such as "5s", "1m30s" or "0s"`)
}

func decoderFor(path string) (func([]byte, any) error, error) {
	switch {
	case isYAML(path):
		return yaml.UnmarshalStrict, nil
	case strings.EqualFold(filepath.Ext(path), ".json"):
		return json.Unmarshal, nil
	default:
		return nil, unsupported(path)
	}
}

func unsupported(path string) *errors.ToastError {
	return errors.New("E104").WithDetailf("%q has extension %q", path, filepath.Ext(path))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// yamlLine matches the position yaml.v2 reports in its errors.
var yamlLine = regexp.MustCompile(`line (\d+)`)

// errorLine extracts a line number from a decode error, or 0.
func errorLine(err error) int {
	m := yamlLine.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
