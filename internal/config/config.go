// Package config holds the generator configuration. Values come from an
// optional TOML file with CLI flags layered on top; Normalize resolves
// derived values and Validate reports every problem at once.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"

	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
	"tpchgen/internal/gen"
	"tpchgen/internal/writer"
)

type GenerateConfig struct {
	ScaleFactor float64  `toml:"scale_factor"`
	Format      string   `toml:"format"`
	OutputDir   string   `toml:"output_dir"`
	Tables      []string `toml:"tables"`
	MaxRows     int64    `toml:"max_rows"`
	BatchSize   int      `toml:"batch_size"`
	AsyncIO     bool     `toml:"async_io"`
	QueueDepth  int      `toml:"queue_depth"`
	Parallel    bool     `toml:"parallel"`
	Verbose     bool     `toml:"verbose"`
}

type ParquetConfig struct {
	Compression  string `toml:"compression"`
	RowGroupSize string `toml:"row_group_size"`
	Streaming    bool   `toml:"use_streaming_mode"`
	AsyncWrite   bool   `toml:"async_single_write"`

	// RowGroupRows is derived at runtime and not read from config.
	RowGroupRows int64 `toml:"-"`
}

type LakehouseConfig struct {
	FlushRows int64 `toml:"flush_rows"`
}

type Config struct {
	Generate  GenerateConfig  `toml:"generate"`
	Parquet   ParquetConfig   `toml:"parquet"`
	Lakehouse LakehouseConfig `toml:"lakehouse"`
}

// Default returns the configuration used when no file and no flags are
// given, apart from the required output directory.
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			ScaleFactor: 1,
			Format:      "csv",
			BatchSize:   gen.DefaultBatchSize,
			QueueDepth:  64,
		},
		Parquet: ParquetConfig{
			Compression: "snappy",
		},
	}
}

// Load decodes a TOML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errs.Config("decode config %s: %v", path, err)
	}
	return cfg, nil
}

// Normalize resolves derived config values after loading.
func Normalize(cfg *Config) error {
	rows, err := cfg.Parquet.resolveRowGroupRows()
	if err != nil {
		return err
	}
	cfg.Parquet.RowGroupRows = rows
	return nil
}

// resolveRowGroupRows accepts either a plain row count or a human size
// like "1M".
func (c *ParquetConfig) resolveRowGroupRows() (int64, error) {
	if c.RowGroupSize == "" {
		return 1 << 20, nil
	}
	rows, err := units.FromHumanSize(c.RowGroupSize)
	if err != nil {
		return 0, errs.Config("invalid row_group_size %q: %v", c.RowGroupSize, err)
	}
	if rows <= 0 {
		return 0, errs.Config("invalid row_group_size %q: must be greater than 0", c.RowGroupSize)
	}
	return rows, nil
}

// Validate returns a user-friendly error if the configuration is invalid.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Generate.ScaleFactor <= 0 {
		problems = append(problems, "generate.scale_factor must be greater than 0")
	}
	if cfg.Generate.OutputDir == "" {
		problems = append(problems, "generate.output_dir is required")
	}
	if cfg.Generate.BatchSize <= 0 {
		problems = append(problems, "generate.batch_size must be greater than 0")
	}
	if cfg.Generate.MaxRows < 0 {
		problems = append(problems, "generate.max_rows must be >= 0")
	}
	if cfg.Generate.QueueDepth <= 0 {
		problems = append(problems, "generate.queue_depth must be greater than 0")
	}
	if _, err := writer.ParseFormat(cfg.Generate.Format); err != nil {
		problems = append(problems, "generate.format must be csv, parquet, arrow, iceberg, or paimon")
	}
	for _, name := range cfg.Generate.Tables {
		if _, ok := dbgen.ParseTable(name); !ok {
			problems = append(problems, "unknown table "+name)
		}
	}
	if cfg.Lakehouse.FlushRows < 0 {
		problems = append(problems, "lakehouse.flush_rows must be >= 0")
	}

	if len(problems) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("invalid config:")
	for _, p := range problems {
		sb.WriteString("\n - ")
		sb.WriteString(p)
	}
	return errs.Config("%s", sb.String())
}

// Tables resolves the configured table list, defaulting to all tables.
func (c *Config) TableList() ([]dbgen.Table, error) {
	if len(c.Generate.Tables) == 0 {
		return dbgen.AllTables(), nil
	}
	out := make([]dbgen.Table, 0, len(c.Generate.Tables))
	for _, name := range c.Generate.Tables {
		t, ok := dbgen.ParseTable(name)
		if !ok {
			return nil, errs.Config("unknown table %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

// WriterOptions maps the config onto the writer knobs.
func (c *Config) WriterOptions() writer.Options {
	return writer.Options{
		Compression:  c.Parquet.Compression,
		RowGroupRows: c.Parquet.RowGroupRows,
		Streaming:    c.Parquet.Streaming,
		AsyncParquet: c.Parquet.AsyncWrite,
		FlushRows:    c.Lakehouse.FlushRows,
	}
}
