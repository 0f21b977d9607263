package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// Probe failures, surfaced to the status check rather than recovered. Retry
// policy lives outside this package.
var (
	ErrTimeout           = errors.New("probe timed out")
	ErrUnreachable       = errors.New("site unreachable")
	ErrMalformedResponse = errors.New("malformed probe response")
)

// SiteProber produces a one-shot snapshot of the remote site's shape.
type SiteProber interface {
	Probe(ctx context.Context) (model.SiteProbe, error)
}

// statusDocument is the JSON shape the site's status endpoint serves. The
// endpoint is machine-readable on purpose; page scraping stays out of this
// service.
type statusDocument struct {
	TotalPages             uint `json:"total_pages"`
	ProductsOnLastPage     uint `json:"products_on_last_page"`
	EstimatedTotalProducts uint `json:"estimated_total_products"`
}

// HTTPProber fetches the status document over HTTP.
type HTTPProber struct {
	client *http.Client
	url    string
}

// NewHTTPProber builds a prober against the given status URL.
func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// Probe performs one status fetch. A reachable endpoint answering with a
// non-2xx status yields an inaccessible probe rather than an error, so the
// planner can refuse the range while the check still reports cleanly.
func (p *HTTPProber) Probe(ctx context.Context) (model.SiteProbe, error) {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return model.SiteProbe{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return model.SiteProbe{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	elapsed := uint(time.Since(started).Milliseconds())
	probedAt := time.Now().UTC()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.SiteProbe{
			IsAccessible:   false,
			ResponseTimeMs: elapsed,
			ProbedAt:       probedAt,
		}, nil
	}

	var doc statusDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return model.SiteProbe{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if doc.TotalPages == 0 {
		return model.SiteProbe{}, fmt.Errorf("%w: status document reports zero pages", ErrMalformedResponse)
	}

	return model.SiteProbe{
		TotalPages:             doc.TotalPages,
		ProductsOnLastPage:     doc.ProductsOnLastPage,
		EstimatedTotalProducts: doc.EstimatedTotalProducts,
		ResponseTimeMs:         elapsed,
		IsAccessible:           true,
		ProbedAt:               probedAt,
	}, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
