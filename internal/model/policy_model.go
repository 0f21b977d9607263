package model

import "errors"

// Crawling modes recognized by the planner.
const (
	ModeIncremental = "incremental"
	ModeFull        = "full"
)

// PlannerPolicy carries the tunable knobs for range planning and session
// execution. Values come from configuration (or per-request overrides), never
// from inference.
type PlannerPolicy struct {
	PageRangeLimit         uint    `json:"page_range_limit"`
	CrawlingMode           string  `json:"crawling_mode"`
	AutoAdjustRange        bool    `json:"auto_adjust_range"`
	GapDetectionThreshold  uint    `json:"gap_detection_threshold"`
	BinarySearchMaxDepth   uint    `json:"binary_search_max_depth"`
	ErrorThresholdPercent  float64 `json:"error_threshold_percent"`
	ProductsPerPageAssumed uint    `json:"products_per_page_assumed"`
}

// Validate checks that the policy is usable for planning.
func (p PlannerPolicy) Validate() error {
	if p.PageRangeLimit == 0 {
		return errors.New("page_range_limit must be positive")
	}
	if p.ProductsPerPageAssumed == 0 {
		return errors.New("products_per_page_assumed must be positive")
	}
	switch p.CrawlingMode {
	case ModeIncremental, ModeFull:
	default:
		return errors.New("crawling_mode must be \"incremental\" or \"full\"")
	}
	return nil
}

// PolicyOverrides are the per-request knobs a caller may change when starting
// a session. Nil fields keep the configured default.
type PolicyOverrides struct {
	PageRangeLimit        *uint    `json:"page_range_limit,omitempty"`
	CrawlingMode          *string  `json:"crawling_mode,omitempty"`
	AutoAdjustRange       *bool    `json:"auto_adjust_range,omitempty"`
	ErrorThresholdPercent *float64 `json:"error_threshold_percent,omitempty"`
}

// Apply returns a copy of the policy with the overrides folded in.
func (p PlannerPolicy) Apply(o *PolicyOverrides) PlannerPolicy {
	if o == nil {
		return p
	}
	if o.PageRangeLimit != nil {
		p.PageRangeLimit = *o.PageRangeLimit
	}
	if o.CrawlingMode != nil {
		p.CrawlingMode = *o.CrawlingMode
	}
	if o.AutoAdjustRange != nil {
		p.AutoAdjustRange = *o.AutoAdjustRange
	}
	if o.ErrorThresholdPercent != nil {
		p.ErrorThresholdPercent = *o.ErrorThresholdPercent
	}
	return p
}
