package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"book-catalog/internal/catalog"
	"book-catalog/internal/filesystem"
	"book-catalog/internal/handlers"
	"book-catalog/internal/logging"
	"book-catalog/internal/memory"
	"book-catalog/internal/metrics"
	"book-catalog/internal/middleware"
	"book-catalog/internal/preview"
	"book-catalog/internal/session"
	"book-catalog/internal/startup"
	"book-catalog/internal/storage"
	"book-catalog/internal/storage/local"
	"book-catalog/internal/storage/s3"
)

const (
	collectorInterval    = time.Minute
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 30 * time.Second
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	memory.ConfigureFromEnv()

	metrics.InitializeMetrics()
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	provider, description, err := openVolume(initCtx, config)
	if err != nil {
		cancelInit()
		startup.LogFatal("Failed to open storage volume: %v", err)
	}
	startup.LogVolumeInit(description, provider.VolumePresent(initCtx))
	cancelInit()

	registry := preview.NewRegistry(config.MaxPreviewBytes)
	startup.LogPreviewInit(registry.Formats(), config.ExtractWorkers)

	sessions := session.NewManager(func() *catalog.Reader {
		return catalog.NewReader(provider, registry, catalog.ReaderConfig{Workers: config.ExtractWorkers})
	}, config.SessionTTL)
	sessions.Start(sessionSweepInterval)

	collector := metrics.NewCollector(provider, collectorInterval)
	collector.Start()

	h := handlers.New(sessions, provider, registry, description)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(
		middleware.Logger(loggingConfig)(router),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // streaming.Copy sets per-chunk deadlines for downloads
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, sessions, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// openVolume builds the configured storage provider and a description of it
// for logs and the API.
func openVolume(ctx context.Context, config *startup.Config) (storage.Provider, string, error) {
	switch config.VolumeBackend {
	case startup.BackendS3:
		s3Config := s3.Config{
			Bucket:          config.S3.Bucket,
			Prefix:          config.S3.Prefix,
			Region:          config.S3.Region,
			Endpoint:        config.S3.Endpoint,
			AccessKeyID:     config.S3.AccessKeyID,
			SecretAccessKey: config.S3.SecretAccessKey,
			SkipHidden:      config.SkipHidden,
		}
		client, err := s3.NewClient(ctx, s3Config)
		if err != nil {
			return nil, "", err
		}
		v, err := s3.New(client, s3Config)
		if err != nil {
			return nil, "", err
		}
		return v, fmt.Sprintf("s3://%s/%s", v.Bucket(), config.S3.Prefix), nil

	default:
		filesystem.SetDefaultVolumeResolver(filesystem.NewMountResolver("card", config.VolumePaths...))

		v, err := local.New(local.Config{
			Mounts:     config.VolumePaths,
			SkipHidden: config.SkipHidden,
			Retry:      filesystem.DefaultRetryConfig(),
		})
		if err != nil {
			return nil, "", err
		}
		return v, describeLocal(v, config.VolumePaths), nil
	}
}

func describeLocal(v *local.Volume, candidates []string) string {
	if mount, ok := v.MountPoint(); ok {
		return "local:" + mount
	}
	return "local:" + strings.Join(candidates, ",")
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, `{"error":"not found"}`)
	})
	return r
}

func newMetricsServer(port string) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, sessions *session.Manager, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping session sweeper")
	sessions.Stop()
	startup.LogShutdownStepComplete(fmt.Sprintf("Session sweeper stopped (%d sessions dropped)", sessions.Len()))

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
