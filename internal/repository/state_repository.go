package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// CrawlStateRepository persists the single record describing local coverage.
type CrawlStateRepository interface {
	// Get returns the coverage record, or nil before the first completed run.
	Get() (*model.CrawlState, error)
	// AdvanceCoverage folds a completed run into coverage. coveredThrough is
	// the highest literal page the run reached without an earlier failure;
	// only the delta past the stored frontier (RangeEnd) counts, so re-running
	// an already-covered band advances nothing. closesGap marks the run whose
	// range reached the end of the gap; the frontier resets afterwards so the
	// next gap cycle starts its walk from page one again.
	AdvanceCoverage(coveredThrough, newItems uint, closesGap bool) error
}

type crawlStateRepo struct {
	db *gorm.DB
}

func NewCrawlStateRepo(db *gorm.DB) CrawlStateRepository {
	return &crawlStateRepo{db: db}
}

func (r *crawlStateRepo) Get() (*model.CrawlState, error) {
	var s model.CrawlState
	err := r.db.First(&s, model.CrawlStateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *crawlStateRepo) AdvanceCoverage(coveredThrough, newItems uint, closesGap bool) error {
	if coveredThrough == 0 && newItems == 0 && !closesGap {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var s model.CrawlState
		err := tx.First(&s, model.CrawlStateKey).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.ID = model.CrawlStateKey
		var last uint
		if s.LastCrawledPage != nil {
			last = *s.LastCrawledPage
		}

		// Coverage grows by the frontier delta only. A run that never got
		// past the stored frontier (or failed on its first page) adds zero.
		if coveredThrough > s.RangeEnd {
			delta := coveredThrough - s.RangeEnd
			last += delta
			s.RangeStart = 1
			s.RangeEnd = coveredThrough
		}
		if closesGap {
			s.RangeStart = 0
			s.RangeEnd = 0
		}

		now := time.Now().UTC()
		s.LastCrawledPage = &last
		s.TotalSavedProducts += newItems
		s.LastCrawlTime = &now
		return tx.Save(&s).Error
	})
}
