package startup

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"book-catalog/internal/logging"
	"book-catalog/internal/preview"
	"book-catalog/internal/session"
	"book-catalog/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Volume backends
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// S3Config holds the bucket settings for the s3 backend.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string `validate:"omitempty,url"`
	AccessKeyID     string
	SecretAccessKey string
}

// Config holds all application configuration
type Config struct {
	VolumeBackend   string        `validate:"required,oneof=local s3"`
	VolumePaths     []string      `validate:"dive,required"`
	SkipHidden      bool
	S3              S3Config
	Port            string        `validate:"required,numeric"`
	MetricsPort     string        `validate:"required,numeric"`
	MetricsEnabled  bool
	LogHealthChecks bool
	SessionTTL      time.Duration `validate:"gt=0"`
	ExtractWorkers  int           `validate:"gte=1"`
	MaxPreviewBytes int64         `validate:"gt=0"`
}

var validate = validator.New()

// LoadConfig loads .env files, reads configuration from environment
// variables and validates it, logging each setting.
func LoadConfig() (*Config, error) {
	loadEnvFiles()
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := configFromEnv()

	logging.Info("  VOLUME_BACKEND:      %s", config.VolumeBackend)
	if config.VolumeBackend == BackendS3 {
		logging.Info("  S3_BUCKET:           %s", config.S3.Bucket)
		logging.Info("  S3_PREFIX:           %s", config.S3.Prefix)
		logging.Info("  S3_REGION:           %s", config.S3.Region)
		logging.Info("  S3_ENDPOINT:         %s", config.S3.Endpoint)
	} else {
		logging.Info("  VOLUME_PATHS:        %s", strings.Join(config.VolumePaths, ", "))
	}
	logging.Info("  SKIP_HIDDEN:         %v", config.SkipHidden)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  SESSION_TTL:         %v", config.SessionTTL)
	logging.Info("  EXTRACT_WORKERS:     %d", config.ExtractWorkers)
	logging.Info("  MAX_PREVIEW_BYTES:   %s", formatBytes(config.MaxPreviewBytes))
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// loadEnvFiles loads .env and then .env.local; variables already set in the
// environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil {
			logging.Debug("Loaded environment from %s", envFile)
		}
	}
}

func configFromEnv() *Config {
	return &Config{
		VolumeBackend: strings.ToLower(getEnv("VOLUME_BACKEND", BackendLocal)),
		VolumePaths:   splitList(getEnv("VOLUME_PATHS", "/media/sdcard")),
		SkipHidden:    getEnvBool("SKIP_HIDDEN", true),
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Prefix:          os.Getenv("S3_PREFIX"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		SessionTTL:      getEnvDuration("SESSION_TTL", session.DefaultTTL),
		ExtractWorkers:  workers.ForExtraction(),
		MaxPreviewBytes: getEnvInt64("MAX_PREVIEW_BYTES", preview.DefaultMaxBytes),
	}
}

// Validate checks struct tags and the rules that span fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	switch cfg.VolumeBackend {
	case BackendLocal:
		if len(cfg.VolumePaths) == 0 {
			return errors.New("VOLUME_PATHS: at least one mount point is required for the local backend")
		}
	case BackendS3:
		if cfg.S3.Bucket == "" {
			return errors.New("S3_BUCKET: required for the s3 backend")
		}
		if (cfg.S3.AccessKeyID == "") != (cfg.S3.SecretAccessKey == "") {
			return errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

// LogVolumeInit logs the selected storage volume.
func LogVolumeInit(description string, present bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORAGE VOLUME")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Volume:  %s", description)
	if present {
		logging.Info("  [OK] Volume is present")
	} else {
		logging.Warn("  Volume is not present; catalog pages will be empty until it is inserted")
	}
}

// LogPreviewInit logs the registered preview formats.
func LogPreviewInit(formats []string, workerCount int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PREVIEW EXTRACTION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Formats: %s", strings.Join(formats, ", "))
	logging.Info("  Workers: %d", workerCount)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes, grouped by prefix, at debug level.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Catalog API:   http://0.0.0.0:%s/api/catalog", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____              __      ______      __        __
   / __ )____  ____  / /__   / ____/___ _/ /_____ _/ /___  ____ _
  / __  / __ \/ __ \/ //_/  / /   / __ '/ __/ __ '/ / __ \/ __ '/
 / /_/ / /_/ / /_/ / ,<    / /___/ /_/ / /_/ /_/ / / /_/ / /_/ /
/_____/\____/\____/_/|_|   \____/\__,_/\__/\__,_/_/\____/\__, /
                                                        /____/
------------------------------------------------------------`
	logging.Printf("%s", banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// formatBytes renders a byte count with binary units.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
