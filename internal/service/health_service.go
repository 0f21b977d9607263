package service

import (
	"time"

	"gorm.io/gorm"
)

// HealthStatus reports service liveness plus the database probe outcome.
type HealthStatus struct {
	Service  string        `json:"service"`
	Database string        `json:"database"`
	Healthy  bool          `json:"healthy"`
	PingTime time.Duration `json:"ping_time"`
	Checked  time.Time     `json:"checked"`
}

// HealthService answers readiness checks.
type HealthService interface {
	Check() *HealthStatus
}

type healthService struct {
	name  string
	probe func() (string, bool)
}

// NewHealthService builds a HealthService that pings the given database.
func NewHealthService(db *gorm.DB, name string) HealthService {
	return &healthService{
		name: name,
		probe: func() (string, bool) {
			if db == nil {
				return "disconnected", false
			}
			sqlDB, err := db.DB()
			if err != nil {
				return "unhealthy", false
			}
			if pingErr := sqlDB.Ping(); pingErr != nil {
				return "unhealthy", false
			}
			return "healthy", true
		},
	}
}

func (h *healthService) Check() *HealthStatus {
	started := time.Now()
	dbStatus, ok := h.probe()
	return &HealthStatus{
		Service:  h.name,
		Database: dbStatus,
		Healthy:  ok,
		PingTime: time.Since(started),
		Checked:  time.Now().UTC(),
	}
}
