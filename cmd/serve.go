package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalevents/internal/instrumentation"
	"github.com/teemow/gcalevents/internal/resources"
	"github.com/teemow/gcalevents/internal/server"
	"github.com/teemow/gcalevents/internal/tools/event_tools"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		readOnly    bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio so AI assistants
can list, read and write calendar events.

Safety Mode:
  --read-only hides the event_update and event_delete tools.

Metrics:
  --metrics-addr starts a Prometheus /metrics endpoint together with
  /healthz and /readyz probes. It is disabled when empty.
  METRICS_EXPORTER, TRACING_EXPORTER and OTEL_* environment variables
  configure OpenTelemetry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, readOnly, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Only register tools that do not modify or delete existing events")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", os.Getenv("METRICS_ADDR"), "Address for the metrics server (empty disables it)")

	return cmd
}

func runServe(parent context.Context, a *app, readOnly bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			a.logger.Warn("instrumentation shutdown failed", "error", err)
		}
	}()

	repo, err := a.repository(shutdownCtx, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, repo,
		server.WithInstrumentation(provider),
		server.WithLogger(a.logger),
		server.WithReadOnly(readOnly),
		server.WithCalendarID(a.cfg.CalendarID),
	)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("server context shutdown failed", "error", err)
		}
	}()

	if metricsAddr != "" {
		metricsServer, err := startMetricsServer(metricsAddr, provider, serverContext, a)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				a.logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("gcalevents", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := event_tools.RegisterEventTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	if err := resources.RegisterEventResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	if readOnly {
		a.logger.Info("starting MCP server in read-only mode", "calendar", a.cfg.CalendarID)
	} else {
		a.logger.Info("starting MCP server", "calendar", a.cfg.CalendarID)
	}

	return runStdioServer(shutdownCtx, mcpSrv)
}

// startMetricsServer binds addr before returning so bind errors surface immediately.
func startMetricsServer(addr string, provider *instrumentation.Provider, sc *server.ServerContext, a *app) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  server.NewHealthChecker(sc),
		Logger:                  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", metricsServer.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		if err := metricsServer.Serve(ln); err != nil {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("metrics server started", "addr", ln.Addr().String())
	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
