package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config carries the deployment conventions of a backup tree plus the knobs
// of the local server. Every field has a default so the tool runs without a
// .env file.
type Config struct {
	MarkerToken     string
	ReceiptsSegment string
	ReportsSegment  string
	FileExtension   string
	Tolerance       decimal.Decimal
	Workers         int
	ReportFile      string
	LogLevel        string

	ServerAddr     string
	AllowedOrigins []string
	AllowedRoot    string
}

const (
	DefaultMarkerToken     = "KRAMW"
	DefaultReceiptsSegment = "JSON/Inv"
	DefaultReportsSegment  = "JSON/End"
	DefaultFileExtension   = ".txt"
	DefaultReportFile      = "sales_reconciliation_report.txt"
)

// DefaultTolerance is one cent.
var DefaultTolerance = decimal.New(1, -2)

func Default() *Config {
	return &Config{
		MarkerToken:     DefaultMarkerToken,
		ReceiptsSegment: DefaultReceiptsSegment,
		ReportsSegment:  DefaultReportsSegment,
		FileExtension:   DefaultFileExtension,
		Tolerance:       DefaultTolerance,
		Workers:         4,
		ReportFile:      DefaultReportFile,
		LogLevel:        "info",
		ServerAddr:      "127.0.0.1:8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
}

// Load reads .env (if present) and then the process environment on top of
// the defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on system env")
	}

	def := Default()
	cfg := &Config{
		MarkerToken:     getEnv("EOD_MARKER_TOKEN", def.MarkerToken),
		ReceiptsSegment: getEnv("EOD_RECEIPTS_SEGMENT", def.ReceiptsSegment),
		ReportsSegment:  getEnv("EOD_REPORTS_SEGMENT", def.ReportsSegment),
		FileExtension:   getEnv("EOD_FILE_EXT", def.FileExtension),
		Tolerance:       getEnvAsDecimal("EOD_TOLERANCE", def.Tolerance),
		Workers:         getEnvAsInt("EOD_WORKERS", def.Workers),
		ReportFile:      getEnv("EOD_REPORT_FILE", def.ReportFile),
		LogLevel:        getEnv("LOG_LEVEL", def.LogLevel),
		ServerAddr:      getEnv("SERVER_ADDR", def.ServerAddr),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", def.AllowedOrigins),
		AllowedRoot:     getEnv("ALLOWED_ROOT", ""),
	}

	if cfg.Workers < 1 {
		logrus.Warnf("EOD_WORKERS must be at least 1, got %d; using 1", cfg.Workers)
		cfg.Workers = 1
	}
	if cfg.Tolerance.IsNegative() {
		logrus.Warnf("EOD_TOLERANCE must not be negative, got %s; using %s", cfg.Tolerance, def.Tolerance)
		cfg.Tolerance = def.Tolerance
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	logrus.Warnf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	logrus.Warnf("Invalid decimal value for %s ('%s'), using default: %s", key, valueStr, fallback)
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
