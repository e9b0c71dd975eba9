package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tpchgen/internal/aio"
	"tpchgen/internal/config"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/gen"
	"tpchgen/internal/util"
	"tpchgen/internal/writer"
)

var (
	configPath  = flag.String("config", "", "path to TOML config file")
	scaleFactor = flag.Float64("scale-factor", 1, "scale factor (fractions allowed)")
	format      = flag.String("format", "csv", "output format: csv, parquet, arrow, iceberg, paimon")
	outputDir   = flag.String("output-dir", "", "directory to write tables into")
	tables      = flag.String("tables", "", "comma-separated table list (default all)")
	maxRows     = flag.Int64("max-rows", 0, "cap rows per table, 0 for no cap")
	batchSize   = flag.Int("batch-size", gen.DefaultBatchSize, "rows per record batch")
	asyncIO     = flag.Bool("async-io", false, "use the asynchronous write engine")
	parallel    = flag.Bool("parallel", false, "generate tables in parallel child processes")
	noProgress  = flag.Bool("no-progress", false, "disable the progress bar")
	verbose     = flag.Bool("verbose", false, "verbose logging")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(logger); err != nil {
		logger.Error("generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func buildConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["scale-factor"] || cfg.Generate.ScaleFactor == 0 {
		cfg.Generate.ScaleFactor = *scaleFactor
	}
	if set["format"] || cfg.Generate.Format == "" {
		cfg.Generate.Format = *format
	}
	if set["output-dir"] || cfg.Generate.OutputDir == "" {
		cfg.Generate.OutputDir = *outputDir
	}
	if set["tables"] {
		cfg.Generate.Tables = nil
		for _, name := range strings.Split(*tables, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Generate.Tables = append(cfg.Generate.Tables, name)
			}
		}
	}
	if set["max-rows"] {
		cfg.Generate.MaxRows = *maxRows
	}
	if set["batch-size"] || cfg.Generate.BatchSize == 0 {
		cfg.Generate.BatchSize = *batchSize
	}
	if set["async-io"] {
		cfg.Generate.AsyncIO = *asyncIO
	}
	if set["parallel"] {
		cfg.Generate.Parallel = *parallel
	}
	if set["verbose"] {
		cfg.Generate.Verbose = *verbose
	}

	if err := config.Normalize(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(logger *zap.Logger) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	tableList, err := cfg.TableList()
	if err != nil {
		return err
	}

	if cfg.Generate.Parallel && len(tableList) > 1 {
		return runParallel(cfg, tableList, logger)
	}
	return runTables(cfg, tableList, logger)
}

// runParallel re-invokes this binary once per table. The producer keeps
// its state in process globals, so table-level parallelism is process
// level by design.
func runParallel(cfg *config.Config, tableList []dbgen.Table, logger *zap.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(context.Background())
	for _, t := range tableList {
		g.Go(func() error {
			args := []string{
				"-scale-factor", strconv.FormatFloat(cfg.Generate.ScaleFactor, 'g', -1, 64),
				"-format", cfg.Generate.Format,
				"-output-dir", cfg.Generate.OutputDir,
				"-tables", t.String(),
				"-max-rows", strconv.FormatInt(cfg.Generate.MaxRows, 10),
				"-batch-size", strconv.Itoa(cfg.Generate.BatchSize),
				"-no-progress",
			}
			if cfg.Generate.AsyncIO {
				args = append(args, "-async-io")
			}
			if cfg.Generate.Verbose {
				args = append(args, "-verbose")
			}
			cmd := exec.CommandContext(ctx, exe, args...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			logger.Debug("spawning table generator", zap.Stringer("table", t))
			return cmd.Run()
		})
	}
	return g.Wait()
}

func runTables(cfg *config.Config, tableList []dbgen.Table, logger *zap.Logger) error {
	start := time.Now()

	if err := dbgen.Init(cfg.Generate.ScaleFactor); err != nil {
		return err
	}
	f, err := writer.ParseFormat(cfg.Generate.Format)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	actx := aio.NewSharedContext(engine)
	multi := writer.NewMulti(cfg.Generate.OutputDir, f, actx, cfg.WriterOptions(), logger)
	if err := multi.StartTables(tableList); err != nil {
		return err
	}

	counters := &util.Counters{}
	var progress *util.ProgressLogger
	if !*noProgress && !cfg.Generate.Verbose {
		progress = util.NewProgressLogger(len(tableList), "generating", 200*time.Millisecond)
	}

	ctx := context.Background()
	var genErr error
	for _, t := range tableList {
		if genErr = generateTable(ctx, cfg, t, multi, actx, counters, progress, logger); genErr != nil {
			break
		}
		if progress != nil {
			progress.UpdateTables(1)
		}
	}
	if err := multi.FinishAll(ctx); err != nil && genErr == nil {
		genErr = err
	}
	if genErr != nil {
		return genErr
	}

	// Writers queue trailing bytes during FinishAll, after the per-batch
	// accounting.
	if tail := actx.BytesQueued() - counters.BytesSubmitted.Load(); tail > 0 {
		counters.BytesSubmitted.Add(tail)
	}
	counters.WritesCompleted.Store(engine.Completed())

	printSummary(cfg, counters, time.Since(start))
	return nil
}

func newEngine(cfg *config.Config) (*aio.Engine, error) {
	if cfg.Generate.AsyncIO {
		return aio.NewEngine(cfg.Generate.QueueDepth)
	}
	return aio.NewSyncEngine(cfg.Generate.QueueDepth)
}

func generateTable(
	ctx context.Context,
	cfg *config.Config,
	table dbgen.Table,
	multi *writer.Multi,
	actx *aio.SharedContext,
	counters *util.Counters,
	progress *util.ProgressLogger,
	logger *zap.Logger,
) error {
	it, err := gen.NewIterator(table, cfg.Generate.BatchSize, cfg.Generate.MaxRows)
	if err != nil {
		return err
	}
	logger.Debug("generating table",
		zap.Stringer("table", table),
		zap.Int64("planned_rows", it.PlannedRows()))

	for {
		batch, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		rows := batch.NumRows()
		err = multi.WriteBatch(ctx, table, batch.Record)
		batch.Release()
		if err != nil {
			return err
		}
		counters.RowsGenerated.Add(rows)
		counters.BatchesEmitted.Add(1)
		delta := actx.BytesQueued() - counters.BytesSubmitted.Load()
		counters.BytesSubmitted.Add(delta)
		if progress != nil {
			progress.UpdateRows(rows)
			progress.UpdateBytes(delta)
		}
	}
	logger.Debug("table done",
		zap.Stringer("table", table),
		zap.Int64("rows", it.TotalRows()))
	return nil
}

func printSummary(cfg *config.Config, counters *util.Counters, elapsed time.Duration) {
	s := counters.Snapshot()
	rate := float64(s.RowsGenerated) / elapsed.Seconds()
	fmt.Printf("generated %d rows in %d batches (%s, %s, %.0f rows/s) to %s\n",
		s.RowsGenerated, s.BatchesEmitted,
		units.BytesSize(float64(s.BytesSubmitted)),
		units.HumanDuration(elapsed), rate, cfg.Generate.OutputDir)
}
