// Package cli implements the celltower command-line interface.
//
// The CLI converts the OFCOM antenna export, runs the declutter pass and
// renders the map. It is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
//   - convert: project an OFCOM export to the interchange dataset
//   - declutter: nudge overlapping sites of a dataset apart
//   - render: run the full pipeline and write artifacts
//   - serve: render once and serve the artifacts over HTTP
//   - cache: manage the local cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the [CLI] struct and is handed to the pipeline through its
// options.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Decluttered 19342 sites (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
