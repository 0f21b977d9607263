package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// SessionRepository defines DB ops around archived crawl sessions.
type SessionRepository interface {
	Create(s *model.CrawlSession) error
	FindByID(id string) (*model.CrawlSession, error)
	UpdateState(id, state string) error
	UpdateProgress(id string, current, total, newItems, errorCount uint) error
	Finish(id, state, reason string, endedAt time.Time) error
	Latest() (*model.CrawlSession, error)
	List(p Pagination) ([]model.CrawlSession, error)
	Count() (int, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(s *model.CrawlSession) error {
	return r.db.Create(s).Error
}

func (r *sessionRepo) FindByID(id string) (*model.CrawlSession, error) {
	var s model.CrawlSession
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("session not found")
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) UpdateState(id, state string) error {
	res := r.db.Model(&model.CrawlSession{}).
		Where("id = ?", id).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("session not found")
	}
	return nil
}

func (r *sessionRepo) UpdateProgress(id string, current, total, newItems, errorCount uint) error {
	return r.db.Model(&model.CrawlSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current":     current,
			"total":       total,
			"new_items":   newItems,
			"error_count": errorCount,
		}).Error
}

func (r *sessionRepo) Finish(id, state, reason string, endedAt time.Time) error {
	res := r.db.Model(&model.CrawlSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":    state,
			"reason":   reason,
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("session not found")
	}
	return nil
}

func (r *sessionRepo) Latest() (*model.CrawlSession, error) {
	var s model.CrawlSession
	err := r.db.Order("started_at DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) List(p Pagination) ([]model.CrawlSession, error) {
	var sessions []model.CrawlSession
	if err := r.db.
		Order("started_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) Count() (int, error) {
	var count int64
	if err := r.db.Model(&model.CrawlSession{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
