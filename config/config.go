package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/birc-stormtroopers/bucket-sort/bsort"
	"github.com/birc-stormtroopers/bucket-sort/logutil"
)

// Sort modes shared by the config file and the CLI
const (
	ModeOrder  = "order"  // stable permutation of the input
	ModeSort   = "sort"   // in-place cycle sort, unstable
	ModeStable = "stable" // order then apply, stable
	ModeCount  = "count"  // key histogram and bucket table
)

// ValidModes lists the accepted mode names
var ValidModes = []string{ModeOrder, ModeSort, ModeStable, ModeCount}

// Defaults for live mode
const (
	DefaultSlidingWindowMaxTime   = 10 * time.Minute
	DefaultSlidingWindowMaxSize   = 100000
	DefaultSleepBetweenIterations = 10
)

type GlobalConfig struct {
	MaxBuckets int               `toml:"maxBuckets"`
	OutputFile string            `toml:"outputFile"`
	Log        logutil.LogConfig `toml:"-"`
}

type StaticConfig struct {
	InputFile     string `toml:"inputFile"`
	Mode          string `toml:"mode"`
	PlotPath      string `toml:"plotPath"`
	RadixFallback bool   `toml:"radixFallback"`
	Workers       int    `toml:"workers"` // 0 picks one per CPU
}

type LiveConfig struct {
	Port                   string        `toml:"port"`
	Mode                   string        `toml:"mode"`
	SlidingWindowMaxTime   time.Duration `toml:"slidingWindowMaxTime"`
	SlidingWindowMaxSize   int           `toml:"slidingWindowMaxSize"`
	SleepBetweenIterations int           `toml:"sleepBetweenIterations"`
}

type Config struct {
	Global *GlobalConfig `toml:"global"`
	Static *StaticConfig `toml:"static"`
	Live   *LiveConfig   `toml:"live"`
}

// NewConfig returns a config with every section present and defaults applied
func NewConfig() *Config {
	return &Config{
		Global: &GlobalConfig{Log: logutil.DefaultLogConfig()},
		Static: &StaticConfig{Mode: ModeStable},
		Live: &LiveConfig{
			Mode:                   ModeSort,
			SlidingWindowMaxTime:   DefaultSlidingWindowMaxTime,
			SlidingWindowMaxSize:   DefaultSlidingWindowMaxSize,
			SleepBetweenIterations: DefaultSleepBetweenIterations,
		},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(string(configData))
}

// ParseConfig parses TOML config text
func ParseConfig(data string) (*Config, error) {
	var rawConfig map[string]any
	if _, err := toml.Decode(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := NewConfig()
	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		var err error
		switch key {
		case "global":
			err = parseGlobalConfig(section, config.Global)
		case "static":
			err = parseStaticConfig(section, config.Static)
		case "live":
			err = parseLiveConfig(section, config.Live)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing [%s]: %w", key, err)
		}
	}

	return config, nil
}

func parseGlobalConfig(m map[string]any, config *GlobalConfig) error {
	if v, ok := m["maxBuckets"].(int64); ok {
		if v <= 0 {
			return fmt.Errorf("maxBuckets must be positive, got %d", v)
		}
		config.MaxBuckets = int(v)
	}
	if v, ok := m["outputFile"].(string); ok {
		config.OutputFile = v
	}
	if v, ok := m["logLevel"].(string); ok {
		config.Log.Level = v
	}
	if v, ok := m["logFormat"].(string); ok {
		config.Log.Format = v
	}
	if v, ok := m["logFile"].(string); ok {
		config.Log.Filename = v
	}
	if v, ok := m["logMaxSize"].(int64); ok {
		config.Log.MaxSize = int(v)
	}
	if v, ok := m["logMaxDays"].(int64); ok {
		config.Log.MaxDays = int(v)
	}
	if v, ok := m["logMaxBackups"].(int64); ok {
		config.Log.MaxBackups = int(v)
	}
	return nil
}

func parseStaticConfig(m map[string]any, config *StaticConfig) error {
	if v, ok := m["inputFile"].(string); ok {
		config.InputFile = v
	}
	if v, ok := m["mode"].(string); ok {
		if !IsValidMode(v) {
			return fmt.Errorf("invalid mode %q, expected one of %v", v, ValidModes)
		}
		config.Mode = v
	}
	if v, ok := m["plotPath"].(string); ok {
		config.PlotPath = v
	}
	if v, ok := m["radixFallback"].(bool); ok {
		config.RadixFallback = v
	}
	if v, ok := m["workers"].(int64); ok {
		if v < 0 {
			return fmt.Errorf("workers must not be negative, got %d", v)
		}
		config.Workers = int(v)
	}
	return nil
}

func parseLiveConfig(m map[string]any, config *LiveConfig) error {
	if v, ok := m["port"].(string); ok {
		config.Port = v
	} else if v, ok := m["port"].(int64); ok {
		config.Port = fmt.Sprintf("%d", v)
	}
	if v, ok := m["mode"].(string); ok {
		if v != ModeSort && v != ModeStable {
			return fmt.Errorf("invalid live mode %q, expected %q or %q", v, ModeSort, ModeStable)
		}
		config.Mode = v
	}
	if v, ok := m["slidingWindowMaxTime"].(string); ok {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid slidingWindowMaxTime %q: %w", v, err)
		}
		config.SlidingWindowMaxTime = duration
	}
	if v, ok := m["slidingWindowMaxSize"].(int64); ok {
		config.SlidingWindowMaxSize = int(v)
	}
	if v, ok := m["sleepBetweenIterations"].(int64); ok {
		config.SleepBetweenIterations = int(v)
	}
	return nil
}

// IsValidMode reports whether mode names a static sort mode
func IsValidMode(mode string) bool {
	for _, m := range ValidModes {
		if m == mode {
			return true
		}
	}
	return false
}

// GetMaxBuckets returns the configured bucket limit or the library default
func (c *Config) GetMaxBuckets() int {
	if c.Global != nil && c.Global.MaxBuckets > 0 {
		return c.Global.MaxBuckets
	}
	return bsort.DefaultMaxBuckets
}

// GetLogConfig returns the logging section, defaulted when absent
func (c *Config) GetLogConfig() logutil.LogConfig {
	if c.Global == nil {
		return logutil.DefaultLogConfig()
	}
	return c.Global.Log
}

func (c *Config) ValidateStatic() error {
	if c.Static == nil {
		return fmt.Errorf("static configuration section is required")
	}

	if c.Static.InputFile == "" {
		return fmt.Errorf("inputFile is required in static configuration")
	}

	// Check if input exists
	if _, err := os.Stat(c.Static.InputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", c.Static.InputFile)
	}

	if !IsValidMode(c.Static.Mode) {
		return fmt.Errorf("invalid mode %q, expected one of %v", c.Static.Mode, ValidModes)
	}

	// PlotPath is optional - no validation needed if empty

	return nil
}

func (c *Config) ValidateLive() error {
	if c.Live == nil {
		return fmt.Errorf("live configuration section is required")
	}

	if c.Live.Port == "" {
		return fmt.Errorf("port is required in live configuration")
	}

	if c.Live.SlidingWindowMaxTime <= 0 {
		return fmt.Errorf("slidingWindowMaxTime must be positive")
	}

	if c.Live.SlidingWindowMaxSize <= 0 {
		return fmt.Errorf("slidingWindowMaxSize must be positive")
	}

	if c.Live.SleepBetweenIterations < 0 {
		return fmt.Errorf("sleepBetweenIterations must not be negative")
	}

	return nil
}
