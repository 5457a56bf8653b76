package ingest

import (
	"log/slog"
	"time"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithQueryInterval specifies how often the orchestrator polls its job
// queue for due fetches. Defaults to 1s
func WithQueryInterval(q time.Duration) Option {
	return func(o *Orchestrator) {
		o.queryInterval = q
	}
}

// WithCollectorSize specifies the buffer size of the worker result
// channel. Defaults to 100
func WithCollectorSize(size int) Option {
	return func(o *Orchestrator) {
		o.collectorSize = size
	}
}
