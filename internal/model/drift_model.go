package model

import "time"

// DataChangeKind tags the drift classification between two probes.
type DataChangeKind string

const (
	ChangeInitial   DataChangeKind = "initial"
	ChangeStable    DataChangeKind = "stable"
	ChangeIncreased DataChangeKind = "increased"
	ChangeDecreased DataChangeKind = "decreased"
)

// DataChangeStatus is the tagged result of diffing the current probe against
// the last persisted snapshot. Only the fields relevant to Kind are set.
type DataChangeStatus struct {
	Kind           DataChangeKind `json:"kind"`
	Count          uint           `json:"count,omitempty"`           // Initial, Stable
	PreviousCount  uint           `json:"previous_count,omitempty"`  // Increased, Decreased
	NewCount       uint           `json:"new_count,omitempty"`       // Increased
	CurrentCount   uint           `json:"current_count,omitempty"`   // Decreased
	DecreaseAmount uint           `json:"decrease_amount,omitempty"` // Decreased
}

// DriftSeverity grades a detected decrease.
type DriftSeverity string

const (
	SeverityNone     DriftSeverity = ""
	SeverityLow      DriftSeverity = "low"
	SeverityMedium   DriftSeverity = "medium"
	SeverityHigh     DriftSeverity = "high"
	SeverityCritical DriftSeverity = "critical"
)

// DecreaseRecommendation advises the operator when the dataset shrank enough
// that automated crawling should not blindly continue. A transient outage can
// look exactly like data loss, so the steps favor verification first.
type DecreaseRecommendation struct {
	ActionType  string        `json:"action_type"`
	Severity    DriftSeverity `json:"severity"`
	Description string        `json:"description"`
	ActionSteps []string      `json:"action_steps"`
}

// DriftSnapshot is the single persisted record the drift detector compares
// against. Exactly one row exists (DriftSnapshotKey); it survives restarts so
// the first check after a restart does not degrade to Initial.
type DriftSnapshot struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	LastEstimatedTotalProducts uint      `gorm:"not null" json:"last_estimated_total_products"`
	LastTotalPages             uint      `gorm:"not null" json:"last_total_pages"`
	LastCheckedAt              time.Time `gorm:"not null" json:"last_checked_at"`
	UpdatedAt                  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DriftSnapshotKey is the fixed primary key of the singleton snapshot row.
const DriftSnapshotKey uint = 1

// TableName returns the name of the table for DriftSnapshot.
func (DriftSnapshot) TableName() string {
	return "drift_snapshots"
}
