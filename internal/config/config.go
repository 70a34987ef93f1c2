package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/fiber/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vfiber.json"

	// DefaultInspectPort is the default inspector port.
	DefaultInspectPort = 7070

	// DefaultInspectHost is the default inspector host.
	DefaultInspectHost = "localhost"

	// DefaultYieldThreshold is the remaining slice time below which a render
	// pass yields.
	DefaultYieldThreshold = "1ms"

	// DefaultSliceBudget is the length of each idle slice the loop hands out.
	DefaultSliceBudget = "5ms"

	// DefaultMaxRenderPhaseUpdates caps state updates made while rendering.
	DefaultMaxRenderPhaseUpdates = 25

	// DefaultMaxQueue bounds the loop's posted task queue.
	DefaultMaxQueue = 256
)

// Config represents the complete vfiber.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Engine contains render engine tuning.
	Engine EngineConfig `json:"engine,omitempty"`

	// Loop contains scheduler loop tuning.
	Loop LoopConfig `json:"loop,omitempty"`

	// Inspect contains inspector server configuration.
	Inspect InspectConfig `json:"inspect,omitempty"`

	// Bench contains defaults for the bench command.
	Bench BenchConfig `json:"bench,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// EngineConfig contains render engine settings.
type EngineConfig struct {
	// YieldThreshold is a duration string (e.g., "1ms").
	YieldThreshold string `json:"yieldThreshold,omitempty"`

	// MaxRenderPhaseUpdates caps consecutive state updates made during render.
	MaxRenderPhaseUpdates int `json:"maxRenderPhaseUpdates,omitempty"`
}

// LoopConfig contains scheduler loop settings.
type LoopConfig struct {
	// SliceBudget is a duration string (e.g., "5ms").
	SliceBudget string `json:"sliceBudget,omitempty"`

	// MaxQueue bounds the number of posted tasks.
	MaxQueue int `json:"maxQueue,omitempty"`
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Tracing enables an OpenTelemetry tracer provider for render spans.
	Tracing bool `json:"tracing,omitempty"`
}

// BenchConfig contains bench command defaults.
type BenchConfig struct {
	// Rows is the number of list rows rendered per pass.
	Rows int `json:"rows,omitempty"`

	// Iterations is the number of update passes.
	Iterations int `json:"iterations,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: EngineConfig{
			YieldThreshold:        DefaultYieldThreshold,
			MaxRenderPhaseUpdates: DefaultMaxRenderPhaseUpdates,
		},
		Loop: LoopConfig{
			SliceBudget: DefaultSliceBudget,
			MaxQueue:    DefaultMaxQueue,
		},
		Inspect: InspectConfig{
			Host: DefaultInspectHost,
			Port: DefaultInspectPort,
		},
		Bench: BenchConfig{
			Rows:       1000,
			Iterations: 50,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vfiber.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No vfiber.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'vfiber config init' to write one with defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse vfiber.json: " + err.Error()).
			WithSuggestion("Check that vfiber.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads vfiber.json from dir, falling back to defaults when the
// file does not exist. Parse errors are still returned.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		if stderrors.Is(err, errors.New("E121")) {
			return New(), nil
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

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
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
	def := New()

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}

	if c.Engine.YieldThreshold == "" {
		c.Engine.YieldThreshold = def.Engine.YieldThreshold
	}
	if c.Engine.MaxRenderPhaseUpdates == 0 {
		c.Engine.MaxRenderPhaseUpdates = def.Engine.MaxRenderPhaseUpdates
	}

	if c.Loop.SliceBudget == "" {
		c.Loop.SliceBudget = def.Loop.SliceBudget
	}
	if c.Loop.MaxQueue == 0 {
		c.Loop.MaxQueue = def.Loop.MaxQueue
	}

	if c.Inspect.Host == "" {
		c.Inspect.Host = def.Inspect.Host
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = def.Inspect.Port
	}

	if c.Bench.Rows == 0 {
		c.Bench.Rows = def.Bench.Rows
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = def.Bench.Iterations
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("E122").
			WithDetail("inspect.port must be between 0 and 65535")
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("E122").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E122").
			WithDetailf("log.format %q must be text or json", c.Log.Format)
	}
	if d, err := time.ParseDuration(c.Engine.YieldThreshold); err != nil || d < 0 {
		return errors.New("E122").
			WithDetailf("engine.yieldThreshold %q is not a non-negative duration", c.Engine.YieldThreshold)
	}
	if d, err := time.ParseDuration(c.Loop.SliceBudget); err != nil || d <= 0 {
		return errors.New("E122").
			WithDetailf("loop.sliceBudget %q is not a positive duration", c.Loop.SliceBudget)
	}
	if c.Engine.MaxRenderPhaseUpdates < 0 || c.Loop.MaxQueue < 0 {
		return errors.New("E122").
			WithDetail("engine.maxRenderPhaseUpdates and loop.maxQueue must not be negative")
	}
	if c.Bench.Rows < 0 || c.Bench.Iterations < 0 {
		return errors.New("E122").
			WithDetail("bench.rows and bench.iterations must not be negative")
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// YieldThreshold returns Engine.YieldThreshold parsed, or the default if it
// does not parse.
func (c *Config) YieldThreshold() time.Duration {
	return parseDuration(c.Engine.YieldThreshold, DefaultYieldThreshold)
}

// SliceBudget returns Loop.SliceBudget parsed, or the default if it does not
// parse.
func (c *Config) SliceBudget() time.Duration {
	return parseDuration(c.Loop.SliceBudget, DefaultSliceBudget)
}

func parseDuration(s, fallback string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// InspectAddress returns the address string for the inspector server.
func (c *Config) InspectAddress() string {
	return c.Inspect.Host + ":" + strconv.Itoa(c.Inspect.Port)
}

// InspectURL returns the inspector's base URL.
func (c *Config) InspectURL() string {
	return "http://" + c.InspectAddress()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vfiber.json, or an error if not found.
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
			return "", errors.New("E121").
				WithDetail("No vfiber.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'vfiber config init' to create one")
		}
		dir = parent
	}
}
