package model

import "time"

// CrawlState is the single persisted record backing LocalSummary: what the
// local store covers and when it was last advanced. Exactly one row exists
// (CrawlStateKey); completed sessions advance it.
//
// LastCrawledPage is the count of pages absorbed into coverage, not a literal
// page number. RangeStart/RangeEnd track the in-flight pass over the current
// gap band: RangeEnd is the highest literal page contiguously reached, and
// both reset to zero once the band is fully absorbed.
type CrawlState struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TotalSavedProducts uint       `gorm:"not null;default:0" json:"total_saved_products"`
	LastCrawledPage    *uint      `json:"last_crawled_page,omitempty"`
	RangeStart         uint       `gorm:"not null;default:0" json:"range_start"`
	RangeEnd           uint       `gorm:"not null;default:0" json:"range_end"`
	LastCrawlTime      *time.Time `json:"last_crawl_time,omitempty"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CrawlStateKey is the fixed primary key of the singleton state row.
const CrawlStateKey uint = 1

// TableName returns the name of the table for CrawlState.
func (CrawlState) TableName() string {
	return "crawl_states"
}

// ToSummary converts the persisted row into the read-only snapshot the
// planner consumes.
func (s *CrawlState) ToSummary() LocalSummary {
	if s == nil {
		return LocalSummary{}
	}
	return LocalSummary{
		TotalSavedProducts: s.TotalSavedProducts,
		LastCrawledPage:    s.LastCrawledPage,
		RangeStart:         s.RangeStart,
		RangeEnd:           s.RangeEnd,
		LastCrawlTime:      s.LastCrawlTime,
	}
}
