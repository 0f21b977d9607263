package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// Config holds the application configuration values.
type Config struct {
	ServerHost       string
	ServerPort       string
	ServerMode       string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseURL      string
	LogLevel         string
	JWTSecret        string
	CORSOrigins      []string

	ProbeURL       string
	ProbeTimeout   time.Duration
	EventBufferLen int
	FetchDelay     time.Duration

	Policy model.PlannerPolicy
}

// Load reads configuration exclusively from environment variables (optionally .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.ServerHost = getEnv("HOST", "0.0.0.0")
	cfg.ServerPort = getEnv("PORT", "8080")
	cfg.ServerMode = getEnv("GIN_MODE", "debug")

	// Database
	cfg.DatabaseHost = getEnv("DB_HOST", "localhost")
	cfg.DatabasePort = getEnv("DB_PORT", "3306")
	cfg.DatabaseUser = getEnv("DB_USER", "")
	cfg.DatabasePassword = getEnv("DB_PASSWORD", "")
	cfg.DatabaseName = getEnv("DB_NAME", "")
	if cfg.DatabaseUser == "" || cfg.DatabasePassword == "" || cfg.DatabaseName == "" {
		return nil, fmt.Errorf("missing required database env vars")
	}
	cfg.DatabaseURL = fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DatabaseUser, cfg.DatabasePassword,
		cfg.DatabaseHost, cfg.DatabasePort,
		cfg.DatabaseName,
	)

	// Logging & Auth
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET environment variable")
	}

	// CORS
	origins := getEnv("CORS_ORIGINS", "")
	if origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	// Probe
	cfg.ProbeURL = getEnv("PROBE_URL", "")
	if cfg.ProbeURL == "" {
		return nil, fmt.Errorf("missing PROBE_URL environment variable")
	}
	probeTimeout, err := getEnvDuration("PROBE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.ProbeTimeout = probeTimeout

	// Executor
	bufLen, err := getEnvInt("EVENT_BUFFER_LEN", "128")
	if err != nil {
		return nil, err
	}
	cfg.EventBufferLen = bufLen
	fetchDelay, err := getEnvDuration("FETCH_DELAY", "0s")
	if err != nil {
		return nil, err
	}
	cfg.FetchDelay = fetchDelay

	// Planner policy
	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy

	return cfg, nil
}

func loadPolicy() (model.PlannerPolicy, error) {
	var p model.PlannerPolicy

	limit, err := getEnvInt("PAGE_RANGE_LIMIT", "50")
	if err != nil {
		return p, err
	}
	gap, err := getEnvInt("GAP_DETECTION_THRESHOLD", "60")
	if err != nil {
		return p, err
	}
	depth, err := getEnvInt("BINARY_SEARCH_MAX_DEPTH", "3")
	if err != nil {
		return p, err
	}
	ppp, err := getEnvInt("PRODUCTS_PER_PAGE", "12")
	if err != nil {
		return p, err
	}
	errThreshold, err := getEnvFloat("ERROR_THRESHOLD_PERCENT", "25")
	if err != nil {
		return p, err
	}

	p = model.PlannerPolicy{
		PageRangeLimit:         uint(limit),
		CrawlingMode:           getEnv("CRAWLING_MODE", model.ModeIncremental),
		AutoAdjustRange:        getEnv("AUTO_ADJUST_RANGE", "true") == "true",
		GapDetectionThreshold:  uint(gap),
		BinarySearchMaxDepth:   uint(depth),
		ErrorThresholdPercent:  errThreshold,
		ProductsPerPageAssumed: uint(ppp),
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid planner policy: %w", err)
	}
	return p, nil
}

// getEnv returns env var or default.
func getEnv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getEnvInt(key, def string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return v, nil
}

func getEnvFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(getEnv(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
