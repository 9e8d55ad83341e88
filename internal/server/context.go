package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/gcalevents/internal/event"
	"github.com/teemow/gcalevents/internal/instrumentation"
)

// ServerContext holds the dependencies of the MCP server.
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	repository *event.Repository
	provider   *instrumentation.Provider
	logger     *slog.Logger
	readOnly   bool
	calendarID string
	mu         sync.RWMutex
	shutdown   bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithInstrumentation attaches the telemetry provider.
func WithInstrumentation(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) {
		sc.provider = provider
	}
}

// WithLogger sets the logger used by tools.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithReadOnly disables tools that modify calendars.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) {
		sc.readOnly = readOnly
	}
}

// WithCalendarID records the calendar used when a tool names none.
func WithCalendarID(calendarID string) Option {
	return func(sc *ServerContext) {
		sc.calendarID = calendarID
	}
}

// NewServerContext creates a server context around repo.
func NewServerContext(ctx context.Context, repo *event.Repository, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		repository: repo,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Repository returns the event repository.
func (sc *ServerContext) Repository() *event.Repository {
	return sc.repository
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// ReadOnly reports whether modifying tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// CalendarID returns the default calendar, empty when none is configured.
func (sc *ServerContext) CalendarID() string {
	return sc.calendarID
}

// Instrumentation returns the telemetry provider, or nil.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	return sc.provider
}

// Metrics returns the metrics recorder. The result may be nil; recording on
// a nil *instrumentation.Metrics is a no-op.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil {
		return nil
	}
	return sc.provider.Metrics()
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Calling it twice is safe.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
