package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

func TestCrawlRange_Pages(t *testing.T) {
	assert.Equal(t, uint(0), model.CrawlRange{}.Pages())
	assert.Equal(t, uint(1), model.CrawlRange{StartPage: 3, EndPage: 3}.Pages())
	assert.Equal(t, uint(6), model.CrawlRange{StartPage: 1, EndPage: 6}.Pages())
}

func TestCrawlRange_Validate(t *testing.T) {
	cases := []struct {
		name       string
		rng        model.CrawlRange
		totalPages uint
		ok         bool
	}{
		{"Empty Range", model.CrawlRange{}, 100, true},
		{"Valid", model.CrawlRange{StartPage: 1, EndPage: 6}, 100, true},
		{"Full Site", model.CrawlRange{StartPage: 1, EndPage: 100}, 100, true},
		{"Unchecked Total", model.CrawlRange{StartPage: 1, EndPage: 600}, 0, true},
		{"Zero Start", model.CrawlRange{StartPage: 0, EndPage: 6}, 100, false},
		{"Inverted", model.CrawlRange{StartPage: 6, EndPage: 1}, 100, false},
		{"Beyond Site", model.CrawlRange{StartPage: 1, EndPage: 101}, 100, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rng.Validate(tc.totalPages)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPolicy_Apply(t *testing.T) {
	base := model.PlannerPolicy{
		PageRangeLimit:         50,
		CrawlingMode:           model.ModeIncremental,
		AutoAdjustRange:        true,
		ErrorThresholdPercent:  25,
		ProductsPerPageAssumed: 12,
	}

	assert.Equal(t, base, base.Apply(nil))

	limit := uint(6)
	mode := model.ModeFull
	adjust := false
	got := base.Apply(&model.PolicyOverrides{
		PageRangeLimit:  &limit,
		CrawlingMode:    &mode,
		AutoAdjustRange: &adjust,
	})
	assert.Equal(t, uint(6), got.PageRangeLimit)
	assert.Equal(t, model.ModeFull, got.CrawlingMode)
	assert.False(t, got.AutoAdjustRange)
	// Untouched knobs keep their configured values.
	assert.Equal(t, uint(12), got.ProductsPerPageAssumed)
}

func TestPolicy_Validate(t *testing.T) {
	good := model.PlannerPolicy{
		PageRangeLimit:         50,
		CrawlingMode:           model.ModeIncremental,
		ProductsPerPageAssumed: 12,
	}
	assert.NoError(t, good.Validate())

	bad := good
	bad.PageRangeLimit = 0
	assert.Error(t, bad.Validate())

	bad = good
	bad.ProductsPerPageAssumed = 0
	assert.Error(t, bad.Validate())

	bad = good
	bad.CrawlingMode = "turbo"
	assert.Error(t, bad.Validate())
}
