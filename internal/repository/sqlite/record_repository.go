package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timeclock/internal/clock"
	"timeclock/internal/domain"
	"timeclock/internal/repository"
)

const createTimeRecordsTable = `
CREATE TABLE IF NOT EXISTS time_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	start_minutes INTEGER NOT NULL,
	end_minutes INTEGER NULL,
	activities TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_time_records_user_date ON time_records(user_id, date);
`

// Dates are stored as ISO yyyy-mm-dd text and clock readings as minutes
// since midnight, keeping the rows locale independent. Display formatting
// happens at the HTTP boundary only.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) repository.RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTimeRecordsTable); err != nil {
		return fmt.Errorf("create time_records table: %w", err)
	}
	return nil
}

func (r *RecordRepository) Create(ctx context.Context, record *domain.TimeRecord) (int64, error) {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO time_records (user_id, date, start_minutes, end_minutes, activities, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.UserID,
		record.Date.ISO(),
		int(record.Start),
		endMinutes(record.End),
		record.Activities,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert time record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("time record last insert id: %w", err)
	}
	record.ID = id
	return id, nil
}

func (r *RecordRepository) Get(ctx context.Context, id int64) (*domain.TimeRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, date, start_minutes, end_minutes, activities, created_at, updated_at
FROM time_records
WHERE id = ?`,
		id,
	)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRecordNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *RecordRepository) ListByUser(ctx context.Context, userID int64) ([]domain.TimeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, date, start_minutes, end_minutes, activities, created_at, updated_at
FROM time_records
WHERE user_id = ?
ORDER BY date DESC, start_minutes DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query time records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *RecordRepository) ListByUserAndDate(ctx context.Context, userID int64, date clock.Date) ([]domain.TimeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, date, start_minutes, end_minutes, activities, created_at, updated_at
FROM time_records
WHERE user_id = ? AND date = ?
ORDER BY start_minutes DESC`, userID, date.ISO())
	if err != nil {
		return nil, fmt.Errorf("query time records by date: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *RecordRepository) Update(ctx context.Context, record *domain.TimeRecord) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE time_records
SET date = ?, start_minutes = ?, end_minutes = ?, activities = ?, updated_at = ?
WHERE id = ?`,
		record.Date.ISO(),
		int(record.Start),
		endMinutes(record.End),
		record.Activities,
		time.Now().UTC(),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update time record: %w", err)
	}
	return requireRowChanged(res)
}

func (r *RecordRepository) UpdateEnd(ctx context.Context, id int64, end clock.TimeOfDay, activities string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE time_records
SET end_minutes = ?, activities = ?, updated_at = ?
WHERE id = ?`,
		int(end),
		activities,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("close time record: %w", err)
	}
	return requireRowChanged(res)
}

func (r *RecordRepository) UpdateActivities(ctx context.Context, id int64, activities string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE time_records
SET activities = ?, updated_at = ?
WHERE id = ?`,
		activities,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update activities: %w", err)
	}
	return requireRowChanged(res)
}

func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete time record: %w", err)
	}
	return requireRowChanged(res)
}

func endMinutes(end *clock.TimeOfDay) any {
	if end == nil {
		return nil
	}
	return int(*end)
}

func requireRowChanged(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row interface {
	Scan(dest ...any) error
}) (*domain.TimeRecord, error) {
	var (
		record  domain.TimeRecord
		dateISO string
		start   int
		end     sql.NullInt64
	)
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&dateISO,
		&start,
		&end,
		&record.Activities,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan time record: %w", err)
	}

	date, err := clock.ParseISODate(dateISO)
	if err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	record.Date = date
	record.Start = clock.TimeOfDay(start)
	if end.Valid {
		v := clock.TimeOfDay(end.Int64)
		record.End = &v
	}
	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]domain.TimeRecord, error) {
	var records []domain.TimeRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}
