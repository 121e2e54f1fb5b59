package observability

import (
	"context"
	"log/slog"
)

// SlogObserver writes events through log/slog. The event type becomes the
// log message, the source and Data keys become attributes, and Level maps
// to the slog level via SlogLevel.
type SlogObserver struct {
	logger *slog.Logger
	floor  Level
}

// NewSlogObserver creates a SlogObserver emitting to logger. A nil logger
// means slog.Default() resolved at emit time, so the observer follows a
// logger installed after program start (the CLI sets one from its flags).
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

// WithFloor returns a copy that drops events below min.
func (o *SlogObserver) WithFloor(min Level) *SlogObserver {
	return &SlogObserver{logger: o.logger, floor: min}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	if event.Level < o.floor {
		return
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
