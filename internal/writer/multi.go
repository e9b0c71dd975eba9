package writer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"tpchgen/internal/aio"
	"tpchgen/internal/dbgen"
	"tpchgen/internal/errs"
)

// Multi owns one writer per table plus the shared async context they write
// through. It is driven from a single goroutine; table-level parallelism
// happens at the process level.
type Multi struct {
	outputDir string
	format    Format
	opts      Options
	actx      *aio.SharedContext
	logger    *zap.Logger

	writers  map[dbgen.Table]TableWriter
	started  bool
	finished bool
}

func NewMulti(outputDir string, format Format, actx *aio.SharedContext, opts Options, logger *zap.Logger) *Multi {
	return &Multi{
		outputDir: outputDir,
		format:    format,
		opts:      opts,
		actx:      actx,
		logger:    logger,
		writers:   make(map[dbgen.Table]TableWriter),
	}
}

// TablePath returns where a table's output lives under the output dir.
func (m *Multi) TablePath(table dbgen.Table) string {
	if m.format.IsDirectory() {
		return filepath.Join(m.outputDir, table.String())
	}
	return filepath.Join(m.outputDir, table.String()+m.format.Extension())
}

// StartTables creates the writers. Calling it again is a no-op.
func (m *Multi) StartTables(tables []dbgen.Table) error {
	if m.started {
		return nil
	}
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return errs.WrapIO(err, "create output directory")
	}
	for _, t := range tables {
		path := m.TablePath(t)
		w, err := New(m.format, path, dbgen.Schema(t), m.actx, m.opts)
		if err != nil {
			return err
		}
		m.writers[t] = w
		m.logger.Debug("started table writer",
			zap.Stringer("table", t),
			zap.Stringer("format", m.format),
			zap.String("path", path))
	}
	m.started = true
	return nil
}

// WriteBatch routes a record to the table's writer.
func (m *Multi) WriteBatch(ctx context.Context, table dbgen.Table, rec arrow.Record) error {
	w, ok := m.writers[table]
	if !ok {
		return errs.Config("table %s was not started", table)
	}
	return w.WriteBatch(ctx, rec)
}

// FinishAll flushes the async engine, closes every writer, and closes the
// shared files. The first error wins but every writer is still closed.
func (m *Multi) FinishAll(ctx context.Context) error {
	if m.finished {
		return nil
	}
	m.finished = true

	var first error
	if err := m.actx.Engine().Flush(); err != nil {
		first = err
	}
	for t, w := range m.writers {
		if err := w.Close(ctx); err != nil {
			m.logger.Warn("closing table writer failed",
				zap.Stringer("table", t), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	if err := m.actx.CloseAll(); err != nil && first == nil {
		first = err
	}
	return first
}
