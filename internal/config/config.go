package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docxport/internal/exporter"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentNodes int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Remote images
	FetchTimeout  time.Duration
	FetchMaxBytes int64

	// Export defaults
	ExportConfig string // path to an HCL export config
	CodeTheme    string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCXPORT_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentNodes: envInt("MAX_CONCURRENT_NODES", exporter.DefaultConcurrency),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		FetchTimeout:  envDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchMaxBytes: envInt64("FETCH_MAX_BYTES", 20<<20),

		ExportConfig: os.Getenv("EXPORT_CONFIG"),
		CodeTheme:    os.Getenv("CODE_THEME"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentNodes <= 0 {
		cfg.MaxConcurrentNodes = exporter.DefaultConcurrency
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.FetchMaxBytes <= 0 {
		cfg.FetchMaxBytes = 20 << 20
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCXPORT_API_KEY is required")
	}
	if c.ExportConfig != "" {
		if _, err := os.Stat(c.ExportConfig); err != nil {
			return fmt.Errorf("EXPORT_CONFIG: %w", err)
		}
	}
	return nil
}

// Export returns the server-wide export defaults: the EXPORT_CONFIG file
// when one is set, with CODE_THEME applied on top.
func (c Config) Export() (exporter.Config, error) {
	var out exporter.Config
	if c.ExportConfig != "" {
		loaded, err := LoadExportFile(c.ExportConfig)
		if err != nil {
			return exporter.Config{}, err
		}
		out = loaded
	}
	if c.CodeTheme != "" {
		out.CodeTheme = c.CodeTheme
	}
	return out, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
