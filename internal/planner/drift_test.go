package planner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
	"github.com/fuzumoe/crawlplan-backend/internal/planner"
)

func snapshot(count uint) *model.DriftSnapshot {
	return &model.DriftSnapshot{
		ID:                         model.DriftSnapshotKey,
		LastEstimatedTotalProducts: count,
		LastCheckedAt:              time.Now().UTC(),
	}
}

func probeWithCount(count uint) model.SiteProbe {
	return model.SiteProbe{
		TotalPages:             count / 12,
		EstimatedTotalProducts: count,
		IsAccessible:           true,
		ProbedAt:               time.Now().UTC(),
	}
}

func TestClassifyDrift_Initial(t *testing.T) {
	result := planner.ClassifyDrift(nil, probeWithCount(1000))

	assert.Equal(t, model.ChangeInitial, result.Status.Kind)
	assert.Equal(t, uint(1000), result.Status.Count)
	assert.Equal(t, model.SeverityNone, result.Severity)
	assert.Nil(t, result.Recommendation)
}

func TestClassifyDrift_Stable(t *testing.T) {
	result := planner.ClassifyDrift(snapshot(1000), probeWithCount(1000))

	assert.Equal(t, model.ChangeStable, result.Status.Kind)
	assert.Equal(t, uint(1000), result.Status.Count)
	assert.Nil(t, result.Recommendation)
}

func TestClassifyDrift_Increased(t *testing.T) {
	result := planner.ClassifyDrift(snapshot(1000), probeWithCount(1100))

	assert.Equal(t, model.ChangeIncreased, result.Status.Kind)
	assert.Equal(t, uint(1000), result.Status.PreviousCount)
	assert.Equal(t, uint(1100), result.Status.NewCount)
	assert.Nil(t, result.Recommendation)
}

func TestClassifyDrift_Decreased(t *testing.T) {
	result := planner.ClassifyDrift(snapshot(1000), probeWithCount(940))

	assert.Equal(t, model.ChangeDecreased, result.Status.Kind)
	assert.Equal(t, uint(1000), result.Status.PreviousCount)
	assert.Equal(t, uint(940), result.Status.CurrentCount)
	assert.Equal(t, uint(60), result.Status.DecreaseAmount)
	assert.Equal(t, model.SeverityMedium, result.Severity)

	require.NotNil(t, result.Recommendation)
	assert.Equal(t, "investigate_decrease", result.Recommendation.ActionType)
	assert.Equal(t, model.SeverityMedium, result.Recommendation.Severity)
	assert.NotEmpty(t, result.Recommendation.ActionSteps)
}

func TestClassifyDrift_SeverityBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		previous uint
		current  uint
		want     model.DriftSeverity
	}{
		{"just under 5% is low", 1000, 951, model.SeverityLow},
		{"exactly 5% is medium", 1000, 950, model.SeverityMedium},
		{"just under 20% is medium", 1000, 801, model.SeverityMedium},
		{"exactly 20% is high", 1000, 800, model.SeverityHigh},
		{"just under 50% is high", 1000, 501, model.SeverityHigh},
		{"exactly 50% is critical", 1000, 500, model.SeverityCritical},
		{"total loss is critical", 1000, 0, model.SeverityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := planner.ClassifyDrift(snapshot(tc.previous), probeWithCount(tc.current))
			assert.Equal(t, model.ChangeDecreased, result.Status.Kind)
			assert.Equal(t, tc.want, result.Severity)
		})
	}
}

func TestClassifyDrift_LowSeverityHasNoRecommendation(t *testing.T) {
	result := planner.ClassifyDrift(snapshot(1000), probeWithCount(990))

	assert.Equal(t, model.SeverityLow, result.Severity)
	assert.Nil(t, result.Recommendation)
}

func TestClassifyDrift_MonotonicGrowthNeverDecreases(t *testing.T) {
	counts := []uint{100, 250, 251, 500, 9000}
	prev := (*model.DriftSnapshot)(nil)
	for _, count := range counts {
		result := planner.ClassifyDrift(prev, probeWithCount(count))
		assert.NotEqual(t, model.ChangeDecreased, result.Status.Kind)
		prev = snapshot(count)
	}
}
