package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/gcalevents/internal/instrumentation"
	"github.com/teemow/gcalevents/internal/logging"
)

// Factory resolves calendar ids to Clients sharing one Calendar service.
// It is safe for concurrent use.
type Factory struct {
	svc               *calendar.Service
	defaultCalendarID string
	metrics           *instrumentation.Metrics
	logger            *slog.Logger
	now               func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) FactoryOption {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithLogger sets the logger handed to every Client.
func WithLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClock replaces time.Now for the default list window.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFactory creates the Calendar service from client options (credentials,
// endpoint, HTTP client) and returns a Factory defaulting to defaultCalendarID.
func NewFactory(ctx context.Context, defaultCalendarID string, clientOpts []option.ClientOption, opts ...FactoryOption) (*Factory, error) {
	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return NewFactoryForService(svc, defaultCalendarID, opts...), nil
}

// NewFactoryForService wraps an existing Calendar service.
func NewFactoryForService(svc *calendar.Service, defaultCalendarID string, opts ...FactoryOption) *Factory {
	f := &Factory{
		svc:               svc,
		defaultCalendarID: defaultCalendarID,
		logger:            slog.Default(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultCalendarID returns the calendar used when callers pass no id.
func (f *Factory) DefaultCalendarID() string {
	return f.defaultCalendarID
}

// ForCalendar returns a Gateway bound to calendarID, or to the default
// calendar when calendarID is empty.
func (f *Factory) ForCalendar(calendarID string) (Gateway, error) {
	if calendarID == "" {
		calendarID = f.defaultCalendarID
	}
	if calendarID == "" {
		return nil, ErrNoCalendarID
	}

	return &Client{
		svc:        f.svc,
		calendarID: calendarID,
		metrics:    f.metrics,
		logger:     logging.WithCalendar(f.logger, calendarID),
		now:        f.now,
	}, nil
}
