package probe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/internal/probe"
)

func TestHTTPProber_Probe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_pages": 120, "products_on_last_page": 5, "estimated_total_products": 1433}`))
	}))
	defer srv.Close()

	p := probe.NewHTTPProber(srv.URL, 5*time.Second)
	site, err := p.Probe(context.Background())
	require.NoError(t, err)

	assert.True(t, site.IsAccessible)
	assert.Equal(t, uint(120), site.TotalPages)
	assert.Equal(t, uint(5), site.ProductsOnLastPage)
	assert.Equal(t, uint(1433), site.EstimatedTotalProducts)
	assert.False(t, site.ProbedAt.IsZero())
}

func TestHTTPProber_Probe_Non2xxIsInaccessibleNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := probe.NewHTTPProber(srv.URL, 5*time.Second)
	site, err := p.Probe(context.Background())
	require.NoError(t, err)

	assert.False(t, site.IsAccessible)
	assert.Equal(t, uint(0), site.TotalPages)
}

func TestHTTPProber_Probe_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	p := probe.NewHTTPProber(srv.URL, 5*time.Second)
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, probe.ErrMalformedResponse)
}

func TestHTTPProber_Probe_ZeroPagesIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_pages": 0}`))
	}))
	defer srv.Close()

	p := probe.NewHTTPProber(srv.URL, 5*time.Second)
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, probe.ErrMalformedResponse)
}

func TestHTTPProber_Probe_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := probe.NewHTTPProber(srv.URL, 20*time.Millisecond)
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, probe.ErrTimeout)
}

func TestHTTPProber_Probe_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := probe.NewHTTPProber(srv.URL, 5*time.Second)
	_, err := p.Probe(ctx)
	assert.ErrorIs(t, err, probe.ErrTimeout)
}

func TestHTTPProber_Probe_Unreachable(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := probe.NewHTTPProber(url, time.Second)
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, probe.ErrUnreachable)
}
