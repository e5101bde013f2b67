package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/bsort"
	"github.com/birc-stormtroopers/bucket-sort/config"
	"github.com/birc-stormtroopers/bucket-sort/ingestor"
	"github.com/birc-stormtroopers/bucket-sort/logutil"
	"github.com/birc-stormtroopers/bucket-sort/output"
	"github.com/birc-stormtroopers/bucket-sort/sliding"
	"github.com/birc-stormtroopers/bucket-sort/tui"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact    bool
	Plain      bool
	TUI        bool
	OutputFile string
}

// Algorithm names reported in the output stats
const (
	algoCounting = "counting"
	algoInPlace  = "in-place"
	algoRadix    = "radix"
)

// topKeysInLive is the number of most frequent keys reported per live iteration
const topKeysInLive = 10

// idlePollInterval bounds polling when no sleep between iterations is configured
const idlePollInterval = 100 * time.Millisecond

// ============================================================================
// MAIN ENTRY POINTS
// ============================================================================

// Static runs one of the static modes over cfg.Static.InputFile
func Static(cfg *config.Config, outputConfig OutputConfig) error {
	logger, err := logutil.NewLogger(cfg.GetLogConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if outputConfig.TUI {
		return executeTUI(cfg, logger)
	}

	result, _, runErr := RunStatic(cfg, logger)
	if err := outputResult(result, outputConfig); err != nil {
		return err
	}
	return runErr
}

// Live runs the live window loop until the client disconnects or a signal arrives
func Live(cfg *config.Config, outputConfig OutputConfig) error {
	logger, err := logutil.NewLogger(cfg.GetLogConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	return executeLiveAnalysis(cfg, outputConfig, logger)
}

// ============================================================================
// CORE EXECUTION LOGIC
// ============================================================================

// RunStatic parses the input file and runs the configured mode over it.
// The result always carries whatever was computed, plus the failure in its
// Errors when err is non-nil. counts is the dense key histogram, or nil when
// its table could not be allocated.
func RunStatic(cfg *config.Config, logger *zap.Logger) (result *output.JSONOutput, counts []int, err error) {
	start := time.Now()
	mode := cfg.Static.Mode
	result = output.NewJSONOutput(mode, start)
	result.Stats.InputFile = cfg.Static.InputFile
	defer result.UpdateDuration(start)

	buf := ingestor.GetRecordSlice()
	parseStart := time.Now()
	records, stats, err := ingestor.ParseRecordFileParallel(cfg.Static.InputFile, cfg.Static.Workers, buf)
	defer func() { ingestor.ReturnRecordSlice(records) }()
	parseDuration := time.Since(parseStart)
	if err != nil {
		result.AddError("read_input", err.Error(), 1)
		return result, nil, fmt.Errorf("reading %s: %w", cfg.Static.InputFile, err)
	}

	result.Stats.TotalRecords = len(records)
	result.Stats.Parsing = output.Parsing{
		DurationMS:    parseDuration.Milliseconds(),
		RatePerSecond: ratePerSecond(stats.Lines, parseDuration),
		Lines:         stats.Lines,
		Skipped:       stats.Skipped,
		Malformed:     stats.Malformed,
	}
	if stats.Malformed > 0 {
		result.AddWarning("parse_error", fmt.Sprintf("%d malformed lines skipped, first: %v", stats.Malformed, stats.FirstError), stats.Malformed)
		logger.Warn("malformed input lines", zap.Int("count", stats.Malformed), zap.Error(stats.FirstError))
	}
	logger.Debug("parsed input",
		zap.String("file", cfg.Static.InputFile),
		zap.Int("records", len(records)),
		zap.Int("workers", cfg.Static.Workers),
		zap.Duration("took", parseDuration))

	keys := ingestor.Keys(records)
	result.Stats.MaxKey = maxKey(keys)
	opts := []bsort.Option{bsort.WithMaxBuckets(cfg.GetMaxBuckets())}

	counts, countErr := bsort.CountKeys(keys, opts...)
	if countErr == nil {
		result.Stats.BucketCount = len(counts)
		result.Stats.DistinctKeys = len(output.KeyCounts(counts))
	} else {
		logger.Warn("key histogram unavailable", zap.Error(countErr))
	}

	sortStart := time.Now()
	switch mode {
	case config.ModeCount:
		if countErr != nil {
			err = countErr
			break
		}
		result.Stats.Algorithm = algoCounting
		result.Counts = output.KeyCounts(counts)
		result.Buckets = bsort.CumulativeSum(counts)

	case config.ModeOrder, config.ModeStable:
		var order bsort.Order
		order, err = computeOrder(records, keys, cfg, opts, result, logger)
		if err != nil {
			break
		}
		if mode == config.ModeOrder {
			result.Order = order.Indices()
			break
		}
		if err = bsort.ApplyOrder(records, order); err != nil {
			break
		}
		result.SetRecords(records)

	case config.ModeSort:
		err = bsort.SortInPlace(records, ingestor.RecordKey, opts...)
		result.Stats.Algorithm = algoInPlace
		if errors.Is(err, bsort.ErrAllocation) && cfg.Static.RadixFallback {
			var sorted []ingestor.Record
			sorted, err = bsort.Gather(records, radixFallback(keys, err, result, logger))
			if err == nil {
				copy(records, sorted)
			}
		}
		if err == nil {
			result.SetRecords(records)
		}

	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	result.Stats.SortDurationUS = time.Since(sortStart).Microseconds()

	if err != nil {
		result.AddError("sort", err.Error(), 1)
		logger.Error("sort failed", zap.String("mode", mode), zap.Error(err))
		return result, counts, err
	}
	if countErr != nil && result.Stats.DistinctKeys == 0 && len(records) > 0 {
		result.Stats.DistinctKeys = distinctSorted(records, mode)
	}

	if cfg.Static.PlotPath != "" {
		plotHistogram(cfg.Static.PlotPath, counts, result, logger)
	}

	logger.Info("sort complete",
		zap.String("mode", mode),
		zap.String("algorithm", result.Stats.Algorithm),
		zap.Int("records", len(records)),
		zap.Int64("sort_us", result.Stats.SortDurationUS))
	return result, counts, nil
}

// computeOrder runs the counting order and falls back to the radix order
// when the bucket table is too large and the fallback is enabled.
func computeOrder(records []ingestor.Record, keys []uint32, cfg *config.Config, opts []bsort.Option,
	result *output.JSONOutput, logger *zap.Logger) (bsort.Order, error) {

	result.Stats.Algorithm = algoCounting
	order, err := bsort.ComputeOrderFunc(records, ingestor.RecordKey, opts...)
	if errors.Is(err, bsort.ErrAllocation) && cfg.Static.RadixFallback {
		return radixFallback(keys, err, result, logger), nil
	}
	return order, err
}

func radixFallback(keys []uint32, cause error, result *output.JSONOutput, logger *zap.Logger) bsort.Order {
	result.Stats.Algorithm = algoRadix
	result.AddWarning("bucket_limit", fmt.Sprintf("bucket table unavailable (%v), used radix order instead", cause), 1)
	logger.Warn("falling back to radix order", zap.Error(cause))
	return bsort.RadixOrder(keys)
}

func plotHistogram(path string, counts []int, result *output.JSONOutput, logger *zap.Logger) {
	if counts == nil {
		result.AddWarning("plot_skipped", "histogram skipped: key histogram could not be allocated", 1)
		return
	}
	if len(counts) == 0 {
		result.AddWarning("plot_skipped", "histogram skipped: no records", 1)
		return
	}
	plotStart := time.Now()
	if err := output.PlotHistogram(counts, path); err != nil {
		result.AddError("plot", err.Error(), 1)
		logger.Error("histogram failed", zap.String("path", path), zap.Error(err))
		return
	}
	result.AddWarning("info", fmt.Sprintf("Histogram generated in %v at %s", time.Since(plotStart), path), 0)
}

// executeTUI runs the sort in the background and shows the result in the TUI
func executeTUI(cfg *config.Config, logger *zap.Logger) error {
	app := tui.NewApp(cfg.Static.InputFile, cfg.Static.Mode)

	go func() {
		result, counts, err := RunStatic(cfg, logger)
		if err != nil {
			app.ShowError(fmt.Sprintf("Sort failed: %v", err))
			return
		}
		app.SetResults(result, counts)
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// createConfigFromCLI creates a config.Config directly from CLI parameters for static mode
func createConfigFromCLI(c *cli.Context, mode string) *config.Config {
	cfg := config.NewConfig()
	cfg.Global.MaxBuckets = c.Int("maxBuckets")
	cfg.Global.OutputFile = c.String("outputFile")
	cfg.Global.Log.Level = c.String("logLevel")
	cfg.Static.InputFile = c.String("input")
	cfg.Static.Mode = mode
	cfg.Static.PlotPath = c.String("plotPath")
	cfg.Static.RadixFallback = c.Bool("radixFallback")
	cfg.Static.Workers = c.Int("workers")
	return cfg
}

// createLiveConfigFromCLI creates a config.Config directly from CLI parameters for live mode
func createLiveConfigFromCLI(c *cli.Context) *config.Config {
	cfg := config.NewConfig()
	cfg.Global.MaxBuckets = c.Int("maxBuckets")
	cfg.Global.Log.Level = c.String("logLevel")
	cfg.Live.Port = c.String("port")
	cfg.Live.SlidingWindowMaxTime = c.Duration("slidingWindowMaxTime")
	cfg.Live.SlidingWindowMaxSize = c.Int("slidingWindowMaxSize")
	cfg.Live.SleepBetweenIterations = c.Int("sleepBetweenIterations")
	if c.Bool("stable") {
		cfg.Live.Mode = config.ModeStable
	}
	return cfg
}

func ratePerSecond(n int, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(float64(n) / d.Seconds())
}

func maxKey(keys []uint32) uint32 {
	var m uint32
	for _, k := range keys {
		if k > m {
			m = k
		}
	}
	return m
}

// distinctSorted counts distinct keys in records that are already sorted by key
func distinctSorted(records []ingestor.Record, mode string) int {
	if mode == config.ModeOrder || len(records) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(records); i++ {
		if records[i].Key != records[i-1].Key {
			n++
		}
	}
	return n
}

// ============================================================================
// LIVE MODE IMPLEMENTATION
// ============================================================================

// executeLiveAnalysis accepts one lumberjack client and re-sorts the sliding
// window after every batch.
func executeLiveAnalysis(cfg *config.Config, outputConfig OutputConfig, logger *zap.Logger) error {
	window := sliding.NewWindow(cfg.Live.SlidingWindowMaxTime, cfg.Live.SlidingWindowMaxSize)
	stable := cfg.Live.Mode == config.ModeStable
	opts := []bsort.Option{bsort.WithMaxBuckets(cfg.GetMaxBuckets())}

	ing, err := ingestor.NewTCPIngestor(
		":"+cfg.Live.Port,
		5*time.Second, // read timeout: avoid client disconnects
	)
	if err != nil {
		return fmt.Errorf("error creating ingestor: %w", err)
	}

	logger.Info("waiting for lumberjack client", zap.String("addr", ing.Addr().String()))
	if err := ing.Accept(); err != nil {
		return fmt.Errorf("error accepting connection: %w", err)
	}
	logger.Info("lumberjack server started")

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	go func() {
		if _, ok := <-stop; ok {
			logger.Info("received shutdown signal")
			ing.Close()
		}
	}()

	sleep := time.Duration(cfg.Live.SleepBetweenIterations) * time.Second
	idle := sleep
	if idle <= 0 {
		idle = idlePollInterval
	}
	for {
		loopStart := time.Now()
		jsonOutput := output.NewJSONOutput("live", loopStart)

		batch, err := ing.ReadBatch()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			jsonOutput.AddError("read_batch", fmt.Sprintf("read error: %v", err), 1)
			outputResult(jsonOutput, outputConfig)
			return fmt.Errorf("reading batch: %w", err)
		}

		if len(batch) == 0 {
			if ing.IsClosed() {
				logger.Info("ingestor closed, exiting loop")
				return nil
			}
			time.Sleep(idle)
			continue
		}

		processWindow(window, batch, stable, opts, jsonOutput, logger)
		jsonOutput.LiveStats.LoopDuration = time.Since(loopStart).Milliseconds()
		jsonOutput.UpdateDuration(loopStart)
		if err := outputResult(jsonOutput, outputConfig); err != nil {
			logger.Error("writing live output", zap.Error(err))
		}

		time.Sleep(sleep)
	}
}

// processWindow folds one batch into the window and reports the sorted
// snapshot in jsonOutput.LiveStats.
func processWindow(window *sliding.Window, batch []ingestor.Record, stable bool, opts []bsort.Option,
	jsonOutput *output.JSONOutput, logger *zap.Logger) {

	window.Update(batch)

	stats := &output.LiveStats{
		WindowSize:     window.Len(),
		DistinctKeys:   window.DistinctKeys(),
		ProcessedBatch: len(batch),
	}
	jsonOutput.LiveStats = stats

	sortStart := time.Now()
	snapshot, err := window.Snapshot(stable, opts...)
	stats.SortDuration = time.Since(sortStart).Microseconds()
	if err != nil {
		jsonOutput.AddError("sort", err.Error(), 1)
		logger.Error("sorting window failed", zap.Error(err))
		return
	}
	if len(snapshot) > 0 {
		stats.MinKey = snapshot[0].Key
		stats.MaxKey = snapshot[len(snapshot)-1].Key
	}

	counts, err := window.Histogram(opts...)
	if err != nil {
		jsonOutput.AddWarning("histogram", err.Error(), 1)
		return
	}
	stats.TopKeys = output.TopKeys(output.KeyCounts(counts), topKeysInLive)
	logger.Debug("window sorted",
		zap.Int("window", stats.WindowSize),
		zap.Int("batch", stats.ProcessedBatch),
		zap.Int64("sort_us", stats.SortDuration))
}

// ============================================================================
// OUTPUT FUNCTIONS
// ============================================================================

// outputResult writes the result to stdout, or to OutputFile when set
func outputResult(jsonOutput *output.JSONOutput, outputConfig OutputConfig) error {
	if outputConfig.OutputFile == "" {
		return writeResult(os.Stdout, jsonOutput, outputConfig)
	}

	f, err := os.Create(outputConfig.OutputFile)
	if err != nil {
		return fmt.Errorf("could not create output file %s: %w", outputConfig.OutputFile, err)
	}
	defer f.Close()
	return writeResult(f, jsonOutput, outputConfig)
}

// writeResult is the unified output function that handles all output formats
func writeResult(w io.Writer, jsonOutput *output.JSONOutput, outputConfig OutputConfig) error {
	if outputConfig.Plain {
		jsonOutput.WritePlain(w)
		return nil
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = jsonOutput.ToCompactJSON()
	} else {
		jsonBytes, err = jsonOutput.ToJSON()
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
