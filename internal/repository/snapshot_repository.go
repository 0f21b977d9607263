package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fuzumoe/crawlplan-backend/internal/model"
)

// SnapshotRepository persists the drift detector's single comparison record.
type SnapshotRepository interface {
	// Get returns the snapshot, or nil when no check has ever completed.
	Get() (*model.DriftSnapshot, error)
	// Put writes the snapshot under its fixed key, creating or replacing it.
	Put(s *model.DriftSnapshot) error
}

type snapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Get() (*model.DriftSnapshot, error) {
	var s model.DriftSnapshot
	err := r.db.First(&s, model.DriftSnapshotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *snapshotRepo) Put(s *model.DriftSnapshot) error {
	s.ID = model.DriftSnapshotKey
	return r.db.Save(s).Error
}
