package planner

import (
	"fmt"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// DriftResult pairs the change classification with its severity grading and,
// for worrying decreases, an operator recommendation.
type DriftResult struct {
	Status         model.DataChangeStatus
	Severity       model.DriftSeverity
	Recommendation *model.DecreaseRecommendation
}

// ClassifyDrift diffs the current probe against the last persisted snapshot.
// Pure; persisting the new snapshot atomically with the classification is the
// caller's job (see the status service).
func ClassifyDrift(prev *model.DriftSnapshot, probe model.SiteProbe) DriftResult {
	current := probe.EstimatedTotalProducts

	if prev == nil {
		return DriftResult{Status: model.DataChangeStatus{Kind: model.ChangeInitial, Count: current}}
	}

	previous := prev.LastEstimatedTotalProducts
	switch {
	case current == previous:
		return DriftResult{Status: model.DataChangeStatus{Kind: model.ChangeStable, Count: current}}
	case current > previous:
		return DriftResult{Status: model.DataChangeStatus{
			Kind:          model.ChangeIncreased,
			PreviousCount: previous,
			NewCount:      current,
		}}
	}

	amount := previous - current
	severity := decreaseSeverity(amount, previous)
	result := DriftResult{
		Status: model.DataChangeStatus{
			Kind:           model.ChangeDecreased,
			PreviousCount:  previous,
			CurrentCount:   current,
			DecreaseAmount: amount,
		},
		Severity: severity,
	}
	if severity != model.SeverityLow {
		result.Recommendation = decreaseRecommendation(amount, previous, severity)
	}
	return result
}

// decreaseSeverity grades a shrink relative to the previous count. Class
// boundaries are inclusive on the lower edge: exactly 5% is Medium, not Low.
func decreaseSeverity(amount, previous uint) model.DriftSeverity {
	if previous == 0 {
		return model.SeverityCritical
	}
	ratio := float64(amount) / float64(previous)
	switch {
	case ratio < 0.05:
		return model.SeverityLow
	case ratio < 0.20:
		return model.SeverityMedium
	case ratio < 0.50:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

func decreaseRecommendation(amount, previous uint, severity model.DriftSeverity) *model.DecreaseRecommendation {
	percent := float64(amount) / float64(previous) * 100
	return &model.DecreaseRecommendation{
		ActionType: "investigate_decrease",
		Severity:   severity,
		Description: fmt.Sprintf(
			"estimated product count dropped by %d (%.1f%% of %d); a transient outage can look identical to real data loss",
			amount, percent, previous),
		ActionSteps: []string{
			"verify the site is reachable and the probe result is not a partial response",
			"re-run the probe and compare before trusting the decrease",
			"hold automated crawling until the decrease is confirmed as real",
		},
	}
}
