package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/openatlas/opendata/pkg/monitoring"
	"github.com/openatlas/opendata/pkg/opendata"
	"github.com/openatlas/opendata/pkg/server"
	"github.com/openatlas/opendata/pkg/tracing"
	ver "github.com/openatlas/opendata/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	userAgent       string

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string

	// Rate limits for each provider
	overpassRPS    float64
	overpassBurst  int
	wikipediaRPS   float64
	wikipediaBurst int
	wikidataRPS    float64
	wikidataBurst  int
	commonsRPS     float64
	commonsBurst   int
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&userAgent, "user-agent", opendata.DefaultUserAgent, "User-Agent string for outbound API requests")

	// Monitoring flags
	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics and health endpoints")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address")

	// Overpass rate limits
	flag.Float64Var(&overpassRPS, "overpass-rps", 1.0, "Overpass rate limit in requests per second")
	flag.IntVar(&overpassBurst, "overpass-burst", 1, "Overpass rate limit burst size")

	// Wikipedia rate limits
	flag.Float64Var(&wikipediaRPS, "wikipedia-rps", 1.0, "Wikipedia rate limit in requests per second")
	flag.IntVar(&wikipediaBurst, "wikipedia-burst", 1, "Wikipedia rate limit burst size")

	// Wikidata rate limits
	flag.Float64Var(&wikidataRPS, "wikidata-rps", 1.0, "Wikidata rate limit in requests per second")
	flag.IntVar(&wikidataBurst, "wikidata-burst", 1, "Wikidata rate limit burst size")

	// Commons rate limits
	flag.Float64Var(&commonsRPS, "commons-rps", 1.0, "Commons rate limit in requests per second")
	flag.IntVar(&commonsBurst, "commons-burst", 1, "Commons rate limit burst size")
}

func main() {
	flag.Parse()

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry tracing
	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		// Continue without tracing - it's not critical
	} else {
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()

		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	if userAgent != opendata.DefaultUserAgent {
		opendata.SetUserAgent(userAgent)
	}

	if overpassRPS != 1.0 || overpassBurst != 1 {
		opendata.UpdateRateLimits(opendata.ServiceOverpass, overpassRPS, overpassBurst)
	}
	if wikipediaRPS != 1.0 || wikipediaBurst != 1 {
		opendata.UpdateRateLimits(opendata.ServiceWikipedia, wikipediaRPS, wikipediaBurst)
	}
	if wikidataRPS != 1.0 || wikidataBurst != 1 {
		opendata.UpdateRateLimits(opendata.ServiceWikidata, wikidataRPS, wikidataBurst)
	}
	if commonsRPS != 1.0 || commonsBurst != 1 {
		opendata.UpdateRateLimits(opendata.ServiceCommons, commonsRPS, commonsBurst)
	}

	logger.Info("starting open-data MCP server",
		"version", ver.BuildVersion,
		"log_level", logLevel.String(),
		"user_agent", userAgent,
		"overpass_rps", overpassRPS,
		"wikipedia_rps", wikipediaRPS,
		"wikidata_rps", wikidataRPS,
		"commons_rps", commonsRPS,
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr)

	// Initialize health checker and monitoring hooks
	var healthChecker *monitoring.HealthChecker
	if enableMonitoring {
		healthChecker = monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
		defer healthChecker.Shutdown()

		opendata.SetMonitoringHooks(&opendata.MonitoringHooks{
			OnRequest: func(service, operation string) {
				monitoring.RecordExternalServiceRequest(service, operation, 0, false) // Start request
			},
			OnResponse: func(service, operation string, duration time.Duration, success bool) {
				monitoring.RecordExternalServiceRequest(service, operation, duration, success)
			},
			OnRateLimit: func(service string, waitTime time.Duration) {
				monitoring.RecordRateLimitWait(service, waitTime)
				monitoring.RecordRateLimitExceeded(service)
			},
			OnError: func(service, errorType string) {
				monitoring.RecordError(service, errorType)
			},
		})
	}

	s, err := server.NewServer()
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if healthChecker != nil {
		startProviderMonitoring(healthChecker, logger)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start monitoring server if enabled
	var monitoringServer *http.Server
	if enableMonitoring {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", healthChecker.HealthHandler())
		mux.HandleFunc("/ready", healthChecker.ReadinessHandler())
		mux.HandleFunc("/live", healthChecker.LivenessHandler())

		monitoringServer = &http.Server{
			Addr:              monitoringAddr,
			Handler:           mux,
			ReadHeaderTimeout: 30 * time.Second, // Prevent Slowloris attacks
		}

		go func() {
			logger.Info("starting monitoring server", "addr", monitoringAddr)
			if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("monitoring server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := monitoringServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown monitoring server", "error", err)
			}
		}()
	}

	logger.Info("transport_enabled", "type", "stdio", "mode", "blocking")
	if err := s.RunWithContext(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// startProviderMonitoring probes each provider once up front, then keeps
// periodic connection monitors running.
func startProviderMonitoring(healthChecker *monitoring.HealthChecker, logger *slog.Logger) {
	checks := []struct {
		name  string
		check func() error
	}{
		{opendata.ServiceOverpass, opendata.CheckOverpassHealth},
		{opendata.ServiceWikipedia, opendata.CheckWikipediaHealth},
		{opendata.ServiceWikidata, opendata.CheckWikidataHealth},
		{opendata.ServiceCommons, opendata.CheckCommonsHealth},
	}

	var g errgroup.Group
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.name)

		mon := monitoring.NewConnectionMonitor(c.name, healthChecker, c.check, 30*time.Second)
		g.Go(func() error {
			mon.PerformCheck()
			return nil
		})
		mon.Start()
	}

	// Wait in the background so startup is not blocked by slow providers
	go func() {
		_ = g.Wait()
		logger.Info("initial provider health probes complete", "services", names)
	}()

	logger.Info("started provider monitoring",
		"services", names,
		"check_interval", "30s")
}
