package model

import (
	"time"
)

// Session lifecycle states.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StatePaused    = "paused"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// legalTransitions encodes the session state machine. Starting is handled
// separately (a fresh session replaces a terminal one).
var legalTransitions = map[string]map[string]bool{
	StateRunning: {StatePaused: true, StateIdle: true, StateCompleted: true, StateFailed: true},
	StatePaused:  {StateRunning: true, StateIdle: true},
}

// CanTransition reports whether moving from one session state to another is
// legal per the state machine.
func CanTransition(from, to string) bool {
	return legalTransitions[from][to]
}

// IsTerminalState reports whether a state admits no further transitions.
func IsTerminalState(s string) bool {
	return s == StateCompleted || s == StateFailed
}

// CrawlSession is the persisted record of one crawl run. The controller owns
// the live session; rows here are the archive the API reads from. ClosesGap
// marks a planned run whose range reaches the end of the coverage gap; its
// completion resets the coverage frontier.
type CrawlSession struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	State      string     `gorm:"type:varchar(16);not null;index" json:"state"`
	Mode       string     `gorm:"type:varchar(16);not null" json:"mode"`
	RangeStart uint       `gorm:"not null" json:"range_start"`
	RangeEnd   uint       `gorm:"not null" json:"range_end"`
	Current    uint       `gorm:"not null;default:0" json:"current"`
	Total      uint       `gorm:"not null;default:0" json:"total"`
	NewItems   uint       `gorm:"not null;default:0" json:"new_items"`
	ErrorCount uint       `gorm:"not null;default:0" json:"error_count"`
	ClosesGap  bool       `gorm:"not null;default:false" json:"-"`
	Reason     string     `gorm:"type:text" json:"reason"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the name of the table for CrawlSession.
func (CrawlSession) TableName() string {
	return "crawl_sessions"
}

// CrawlSessionDTO is the API representation of a session.
type CrawlSessionDTO struct {
	ID         string     `json:"session_id"`
	State      string     `json:"state"`
	Mode       string     `json:"mode"`
	Range      CrawlRange `json:"range"`
	Current    uint       `json:"current"`
	Total      uint       `json:"total"`
	NewItems   uint       `json:"new_items"`
	ErrorCount uint       `json:"error_count"`
	Reason     string     `json:"reason,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// ToDTO converts a CrawlSession row to its API representation.
func (s *CrawlSession) ToDTO() *CrawlSessionDTO {
	return &CrawlSessionDTO{
		ID:         s.ID,
		State:      s.State,
		Mode:       s.Mode,
		Range:      CrawlRange{StartPage: s.RangeStart, EndPage: s.RangeEnd},
		Current:    s.Current,
		Total:      s.Total,
		NewItems:   s.NewItems,
		ErrorCount: s.ErrorCount,
		Reason:     s.Reason,
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
	}
}

// StartSessionInput is the payload of start_smart_crawling. Range is optional;
// when absent the service plans one from the live probe and local state.
type StartSessionInput struct {
	Policy *PolicyOverrides `json:"policy,omitempty"`
	Range  *CrawlRange      `json:"range,omitempty"`
}
