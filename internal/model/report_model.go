package model

import "time"

// RecommendationAction is the single next step the status check proposes.
type RecommendationAction string

const (
	ActionCrawl       RecommendationAction = "crawl"
	ActionCleanup     RecommendationAction = "cleanup"
	ActionUpToDate    RecommendationAction = "up_to_date"
	ActionInvestigate RecommendationAction = "investigate"
)

// RecommendationPriority grades how urgently the action should be taken.
type RecommendationPriority string

const (
	PriorityLow      RecommendationPriority = "low"
	PriorityMedium   RecommendationPriority = "medium"
	PriorityHigh     RecommendationPriority = "high"
	PriorityCritical RecommendationPriority = "critical"
)

// RecommendationReport is the consolidated result of a status check. It is the
// single source of truth for "what should happen next"; callers render it
// without re-deriving any of the math.
type RecommendationReport struct {
	Action            RecommendationAction   `json:"action"`
	Priority          RecommendationPriority `json:"priority"`
	SuggestedRange    *CrawlRange            `json:"suggested_range,omitempty"`
	EstimatedNewItems uint                   `json:"estimated_new_items"`
	EfficiencyScore   float64                `json:"efficiency_score"`
	Reason            string                 `json:"reason"`
	NextSteps         []string               `json:"next_steps"`
	DataChange        *DataChangeStatus      `json:"data_change,omitempty"`
	CheckedAt         time.Time              `json:"checked_at"`
}

// CalculateRangeInput is the payload of the calculate_crawling_range command.
type CalculateRangeInput struct {
	TotalPagesOnSite   uint `json:"total_pages_on_site" binding:"required"`
	ProductsOnLastPage uint `json:"products_on_last_page"`
}

// CrawlingRangeResponse answers calculate_crawling_range with the proposed
// range plus the context it was derived from.
type CrawlingRangeResponse struct {
	Range        CrawlRange    `json:"range"`
	Progress     RangeProgress `json:"progress"`
	SiteInfo     SiteInfo      `json:"site_info"`
	LocalDBInfo  LocalDBInfo   `json:"local_db_info"`
	CrawlingInfo CrawlingInfo  `json:"crawling_info"`
}

// RangeProgress describes how much of the site the local store already covers.
type RangeProgress struct {
	CoveredPages    uint    `json:"covered_pages"`
	TotalPages      uint    `json:"total_pages"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// SiteInfo echoes the site shape the range was computed against.
type SiteInfo struct {
	TotalPages             uint `json:"total_pages"`
	ProductsOnLastPage     uint `json:"products_on_last_page"`
	EstimatedTotalProducts uint `json:"estimated_total_products"`
	IsAccessible           bool `json:"is_accessible"`
}

// LocalDBInfo echoes the persisted crawl state the range was computed against.
type LocalDBInfo struct {
	TotalSavedProducts uint       `json:"total_saved_products"`
	LastCrawledPage    *uint      `json:"last_crawled_page,omitempty"`
	LastCrawlTime      *time.Time `json:"last_crawl_time,omitempty"`
}

// CrawlingInfo carries the plan outcome: how many pages will be crawled now,
// how many wait for a later run, and the (estimated) item yield.
type CrawlingInfo struct {
	PagesToCrawl      uint   `json:"pages_to_crawl"`
	DeferredPages     uint   `json:"deferred_pages"`
	EstimatedNewItems uint   `json:"estimated_new_items"`
	Mode              string `json:"mode"`
}
