package util

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/docker/go-units"
	"github.com/schollz/progressbar/v3"
)

const (
	progressPrefixWidth = 52
	progressBarWidth    = 32
)

// ProgressLogger tracks and renders progress for table and row counts.
type ProgressLogger struct {
	totalTables int
	action      string
	interval    time.Duration
	tables      atomic.Int32
	rows        atomic.Int64
	bytes       atomic.Int64
	bar         *progressbar.ProgressBar
}

// NewProgressLogger creates and starts a progress logger over the given
// number of tables.
func NewProgressLogger(totalTables int, action string, interval time.Duration) *ProgressLogger {
	p := &ProgressLogger{
		totalTables: totalTables,
		action:      action,
		interval:    interval,
	}
	p.start()
	return p
}

// UpdateRows increments the row counter.
func (p *ProgressLogger) UpdateRows(delta int64) {
	if delta == 0 {
		return
	}
	p.rows.Add(delta)
}

// UpdateBytes increments the byte counter.
func (p *ProgressLogger) UpdateBytes(delta int64) {
	if delta == 0 {
		return
	}
	p.bytes.Add(delta)
}

// UpdateTables increments the finished-table counter.
func (p *ProgressLogger) UpdateTables(delta int32) {
	if delta == 0 {
		return
	}
	p.tables.Add(delta)
}

// Snapshot returns the current table, row, and byte counts.
func (p *ProgressLogger) Snapshot() (int64, int64, int64) {
	return int64(p.tables.Load()), p.rows.Load(), p.bytes.Load()
}

func (p *ProgressLogger) start() {
	if p.totalTables <= 0 {
		return
	}

	p.bar = NewTableProgressBar(p.totalTables, p.action)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		prevTables := int64(p.tables.Load())
		prevRows := p.rows.Load()
		prevTime := time.Now()
		lastDesc := ""

		for range ticker.C {
			curTables := int64(p.tables.Load())
			curRows := p.rows.Load()
			curBytes := p.bytes.Load()
			now := time.Now()
			elapsed := now.Sub(prevTime).Seconds()

			tablesDelta := max(curTables-prevTables, 0)
			rowsPerSec := progressRate(curRows-prevRows, elapsed)
			desc := progressDescription(p.action, curBytes, curRows, rowsPerSec)
			if desc != lastDesc {
				p.bar.Describe(desc)
				lastDesc = desc
			}
			if tablesDelta > 0 {
				_ = p.bar.Add64(tablesDelta)
			}

			prevTables = curTables
			prevRows = curRows
			prevTime = now

			if int(curTables) >= p.totalTables {
				_ = p.bar.Finish()
				break
			}
		}
	}()
}

func progressRate(delta int64, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return float64(delta) / elapsedSeconds
}

// NewTableProgressBar creates a themed progress bar for table-based work.
func NewTableProgressBar(totalTables int, action string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		totalTables,
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(progressDescription(action, 0, 0, 0)),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(progressBarWidth),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stdout)
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[light_magenta]━",
			SaucerHead:    "[light_magenta]╸",
			SaucerPadding: "[dark_gray]━",
			BarStart:      "",
			BarEnd:        "[reset]",
		}),
	)
}

func progressDescription(action string, bytes, rows int64, rowsPerSec float64) string {
	prefix := fmt.Sprintf(
		"%s %s (%d rows, %.0f rows/s)",
		action,
		units.BytesSize(float64(bytes)),
		rows,
		rowsPerSec,
	)
	return padOrTrim(prefix, progressPrefixWidth) + " "
}

func padOrTrim(s string, width int) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		if width <= 3 {
			return s[:width]
		}
		return s[:width-3] + "..."
	}
	if len(s) < width {
		return s + strings.Repeat(" ", width-len(s))
	}
	return s
}
