package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/config"
	"github.com/birc-stormtroopers/bucket-sort/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "logLevel",
		Usage: "Log level (debug, info, warn, error)",
		Value: "warn",
	}

	// Input and sorting flags
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "Path to the input file, one 'key[ payload]' record per line",
	}
	maxBucketsFlag = &cli.IntFlag{
		Name:  "maxBuckets",
		Usage: "Largest bucket table to allocate; keys must be below this limit",
	}
	stableFlag = &cli.BoolFlag{
		Name:  "stable",
		Usage: "Keep records with equal keys in input order (uses an index array)",
		Value: false,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of goroutines parsing the input file (0 = one per CPU)",
	}
	radixFallbackFlag = &cli.BoolFlag{
		Name:  "radixFallback",
		Usage: "Fall back to a radix order when the bucket table cannot be allocated",
		Value: false,
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the key histogram (e.g., '/path/to/histogram.html'). If not provided, no plot will be generated.",
	}
	outputFileFlag = &cli.StringFlag{
		Name:  "outputFile",
		Usage: "Write the result to this file instead of stdout",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Launch TUI (Terminal User Interface) mode",
		Value: false,
	}

	// Live-specific flags
	portFlag = &cli.StringFlag{
		Name:  "port",
		Usage: "Port to listen on for lumberjack clients",
	}
	slidingWindowMaxTimeFlag = &cli.DurationFlag{
		Name:  "slidingWindowMaxTime",
		Usage: "Maximum time duration for sliding window",
		Value: config.DefaultSlidingWindowMaxTime,
	}
	slidingWindowMaxSizeFlag = &cli.IntFlag{
		Name:  "slidingWindowMaxSize",
		Usage: "Maximum number of records in sliding window",
		Value: config.DefaultSlidingWindowMaxSize,
	}
	sleepBetweenIterationsFlag = &cli.IntFlag{
		Name:  "sleepBetweenIterations",
		Usage: "Sleep duration between iterations in seconds",
		Value: config.DefaultSleepBetweenIterations,
	}
)

// outputFlagNames may be combined with --config
var outputFlagNames = []string{"compact", "plain", "tui", "logLevel"}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	flagsToCheck := []string{
		"input", "maxBuckets", "workers", "stable", "radixFallback", "plotPath", "outputFile",
		"port", "slidingWindowMaxTime", "slidingWindowMaxSize", "sleepBetweenIterations",
		"tui", "compact", "plain", "logLevel",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateInputFileExists(inputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}
	return nil
}

// resolveMode maps a command onto a static mode. The sort command runs the
// stable variant when asked to, either by flag or by the config file.
func resolveMode(command string, stable bool) string {
	if command == config.ModeSort && stable {
		return config.ModeStable
	}
	return command
}

// Command handler functions to reduce deep nesting

// staticAction returns the action for one of the static commands
func staticAction(command string) cli.ActionFunc {
	return func(c *cli.Context) error {
		configPath := c.String("config")
		if configPath != "" {
			return handleStaticConfigMode(c, command, configPath)
		}
		return handleStaticFlagsMode(c, command)
	}
}

// handleStaticConfigMode handles a static command when using config file
func handleStaticConfigMode(c *cli.Context, command, configPath string) error {
	if err := validateConfigModeFlags(c, outputFlagNames); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("logLevel") {
		cfg.Global.Log.Level = c.String("logLevel")
	}

	cfg.Static.Mode = resolveMode(command, cfg.Static.Mode == config.ModeStable)
	if err := cfg.ValidateStatic(); err != nil {
		return fmt.Errorf("invalid static configuration: %w", err)
	}

	if err := validatePlotPath(cfg.Static.PlotPath); err != nil {
		return err
	}

	return Static(cfg, OutputConfig{
		Compact:    c.Bool("compact"),
		Plain:      c.Bool("plain"),
		TUI:        c.Bool("tui"),
		OutputFile: cfg.Global.OutputFile,
	})
}

// handleStaticFlagsMode handles a static command when using CLI flags only
func handleStaticFlagsMode(c *cli.Context, command string) error {
	if !c.IsSet("input") {
		return fmt.Errorf("input is required when not using --config")
	}

	if err := validateInputFileExists(c.String("input")); err != nil {
		return err
	}

	if c.IsSet("maxBuckets") && c.Int("maxBuckets") <= 0 {
		return fmt.Errorf("maxBuckets must be positive, got %d", c.Int("maxBuckets"))
	}

	if c.Int("workers") < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Int("workers"))
	}

	if err := validatePlotPath(c.String("plotPath")); err != nil {
		return err
	}

	cfg := createConfigFromCLI(c, resolveMode(command, c.Bool("stable")))
	return Static(cfg, OutputConfig{
		Compact:    c.Bool("compact"),
		Plain:      c.Bool("plain"),
		TUI:        c.Bool("tui"),
		OutputFile: c.String("outputFile"),
	})
}

// handleLiveCommand processes the live command with proper separation of concerns
func handleLiveCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath != "" {
		return handleLiveConfigMode(c, configPath)
	}
	return handleLiveFlagsMode(c)
}

// handleLiveConfigMode handles live command when using config file
func handleLiveConfigMode(c *cli.Context, configPath string) error {
	if err := validateConfigModeFlags(c, []string{"compact", "plain", "logLevel"}); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("logLevel") {
		cfg.Global.Log.Level = c.String("logLevel")
	}

	if err := cfg.ValidateLive(); err != nil {
		return fmt.Errorf("invalid live configuration: %w", err)
	}

	return Live(cfg, OutputConfig{Compact: c.Bool("compact"), Plain: c.Bool("plain")})
}

// handleLiveFlagsMode handles live command when using CLI flags only
func handleLiveFlagsMode(c *cli.Context) error {
	if !c.IsSet("port") {
		return fmt.Errorf("port is required when not using --config")
	}

	cfg := createLiveConfigFromCLI(c)
	if err := cfg.ValidateLive(); err != nil {
		return fmt.Errorf("invalid live flags: %w", err)
	}

	return Live(cfg, OutputConfig{Compact: c.Bool("compact"), Plain: c.Bool("plain")})
}

var staticFlags = []cli.Flag{
	// Configuration
	configFlag,
	logLevelFlag,
	// Input and sorting
	inputFlag,
	maxBucketsFlag,
	workersFlag,
	radixFallbackFlag,
	// Output flags
	plotPathFlag,
	outputFileFlag,
	compactFlag,
	plainFlag,
	tuiFlag,
}

var App = &cli.App{
	Name:     "bsort",
	Usage:    "Bucket sort keyed records from a file or a live lumberjack stream",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Commands: []*cli.Command{
		{
			Name:   config.ModeOrder,
			Usage:  "Print the stable permutation that sorts the input by key",
			Flags:  staticFlags,
			Action: staticAction(config.ModeOrder),
		},
		{
			Name:   config.ModeSort,
			Usage:  "Sort the input records by key (in place unless --stable)",
			Flags:  append([]cli.Flag{stableFlag}, staticFlags...),
			Action: staticAction(config.ModeSort),
		},
		{
			Name:   config.ModeCount,
			Usage:  "Print how often each key occurs and where its bucket starts",
			Flags:  staticFlags,
			Action: staticAction(config.ModeCount),
		},
		{
			Name:  "live",
			Usage: "Sort a sliding window of records received from lumberjack clients",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				logLevelFlag,
				// Live-specific flags
				portFlag,
				slidingWindowMaxTimeFlag,
				slidingWindowMaxSizeFlag,
				sleepBetweenIterationsFlag,
				maxBucketsFlag,
				stableFlag,
				// Output flags
				compactFlag,
				plainFlag,
			},
			Action: handleLiveCommand,
		},
	},
}
