package configs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/configs"
	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "crawler")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "crawlplan")
	t.Setenv("JWT_SECRET", "token-secret")
	t.Setenv("PROBE_URL", "http://example.test/status")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "crawler:secret@tcp(localhost:3306)/crawlplan?parseTime=true", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 128, cfg.EventBufferLen)

	assert.Equal(t, uint(50), cfg.Policy.PageRangeLimit)
	assert.Equal(t, model.ModeIncremental, cfg.Policy.CrawlingMode)
	assert.True(t, cfg.Policy.AutoAdjustRange)
	assert.Equal(t, uint(60), cfg.Policy.GapDetectionThreshold)
	assert.Equal(t, uint(3), cfg.Policy.BinarySearchMaxDepth)
	assert.InDelta(t, 25, cfg.Policy.ErrorThresholdPercent, 0.0001)
	assert.Equal(t, uint(12), cfg.Policy.ProductsPerPageAssumed)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAGE_RANGE_LIMIT", "6")
	t.Setenv("CRAWLING_MODE", model.ModeFull)
	t.Setenv("AUTO_ADJUST_RANGE", "false")
	t.Setenv("PROBE_TIMEOUT", "3s")
	t.Setenv("EVENT_BUFFER_LEN", "32")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, uint(6), cfg.Policy.PageRangeLimit)
	assert.Equal(t, model.ModeFull, cfg.Policy.CrawlingMode)
	assert.False(t, cfg.Policy.AutoAdjustRange)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 32, cfg.EventBufferLen)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name string
		omit string
	}{
		{"Database User", "DB_USER"},
		{"JWT Secret", "JWT_SECRET"},
		{"Probe URL", "PROBE_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.omit, "")

			_, err := configs.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"Bad Page Limit", "PAGE_RANGE_LIMIT", "lots"},
		{"Negative Page Limit", "PAGE_RANGE_LIMIT", "-1"},
		{"Zero Page Limit Fails Policy", "PAGE_RANGE_LIMIT", "0"},
		{"Bad Mode", "CRAWLING_MODE", "turbo"},
		{"Bad Timeout", "PROBE_TIMEOUT", "soon"},
		{"Bad Threshold", "ERROR_THRESHOLD_PERCENT", "many"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := configs.Load()
			assert.Error(t, err)
		})
	}
}
