package repository

import (
	"context"

	"timeclock/internal/clock"
	"timeclock/internal/domain"
)

// RecordRepository exposes persistence operations for time records.
type RecordRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, record *domain.TimeRecord) (int64, error)
	Get(ctx context.Context, id int64) (*domain.TimeRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.TimeRecord, error)
	ListByUserAndDate(ctx context.Context, userID int64, date clock.Date) ([]domain.TimeRecord, error)
	Update(ctx context.Context, record *domain.TimeRecord) error
	UpdateEnd(ctx context.Context, id int64, end clock.TimeOfDay, activities string) error
	UpdateActivities(ctx context.Context, id int64, activities string) error
	Delete(ctx context.Context, id int64) error
}
