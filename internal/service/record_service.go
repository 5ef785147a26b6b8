package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timeclock/internal/clock"
	"timeclock/internal/domain"
	"timeclock/internal/repository"
	"timeclock/internal/storage"
	"timeclock/internal/tracker"
)

// ErrStorageUnavailable is returned for export requests when no report
// storage is configured.
var ErrStorageUnavailable = errors.New("report storage is not configured")

// SessionStatus is the derived state shown on the dashboard.
type SessionStatus struct {
	Active       *domain.TimeRecord
	Inconsistent []domain.TimeRecord
	Today        clock.HoursMinutes
	Week         clock.HoursMinutes
}

// RecordService coordinates record lifecycle operations for one user. The
// active-session rule is checked against the snapshot read inside each
// call; two near-simultaneous starts from the same user can still race.
type RecordService interface {
	StartSession(ctx context.Context, userID int64) (*domain.TimeRecord, error)
	EndSession(ctx context.Context, userID int64, activities string) (*domain.TimeRecord, error)
	SaveActivities(ctx context.Context, userID int64, activities string) error
	Status(ctx context.Context, userID int64) (*SessionStatus, error)
	CreateRecord(ctx context.Context, userID int64, form tracker.EditForm) (*domain.TimeRecord, error)
	UpdateRecord(ctx context.Context, userID, id int64, form tracker.EditForm) error
	DeleteRecord(ctx context.Context, userID, id int64) error
	ListRecords(ctx context.Context, userID int64) ([]domain.TimeRecord, error)
	ListByDate(ctx context.Context, userID int64, date clock.Date) ([]domain.TimeRecord, error)
	FilterByDate(ctx context.Context, userID int64, date string) ([]domain.TimeRecord, error)
	ExportRecords(ctx context.Context, userID int64) (string, error)
	ListExports(ctx context.Context, userID int64) ([]storage.ObjectInfo, error)
	ExportURL(ctx context.Context, userID int64, key string) (string, error)
	DeleteExports(ctx context.Context, userID int64) error
}

type recordService struct {
	records repository.RecordRepository
	reports storage.Service
	bucket  string
	prefix  string
	now     func() time.Time
}

func NewRecordService(records repository.RecordRepository, reports storage.Service, bucket, prefix string) RecordService {
	return &recordService{
		records: records,
		reports: reports,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		now:     time.Now,
	}
}

func (s *recordService) StartSession(ctx context.Context, userID int64) (*domain.TimeRecord, error) {
	now := s.now()
	today := clock.DateOf(now)

	records, err := s.records.ListByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if status := tracker.Resolve(records, today); status.Active != nil {
		return nil, tracker.ErrDuplicateActiveSession
	}

	record := &domain.TimeRecord{
		UserID: userID,
		Date:   today,
		Start:  clock.TimeOfDayOf(now),
	}
	if _, err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *recordService) EndSession(ctx context.Context, userID int64, activities string) (*domain.TimeRecord, error) {
	now := s.now()
	today := clock.DateOf(now)

	records, err := s.records.ListByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	status := tracker.Resolve(records, today)
	if status.Active == nil {
		return nil, tracker.ErrNoActiveSession
	}

	end := clock.TimeOfDayOf(now)
	if _, err := clock.Duration(status.Active.Start, end); err != nil {
		return nil, err
	}
	if activities == "" {
		activities = status.Active.Activities
	}

	if err := s.records.UpdateEnd(ctx, status.Active.ID, end, activities); err != nil {
		return nil, err
	}

	closed := *status.Active
	closed.End = &end
	closed.Activities = activities
	return &closed, nil
}

func (s *recordService) SaveActivities(ctx context.Context, userID int64, activities string) error {
	today := clock.DateOf(s.now())

	records, err := s.records.ListByUserAndDate(ctx, userID, today)
	if err != nil {
		return err
	}
	status := tracker.Resolve(records, today)
	if status.Active == nil {
		return tracker.ErrNoActiveSession
	}
	return s.records.UpdateActivities(ctx, status.Active.ID, activities)
}

func (s *recordService) Status(ctx context.Context, userID int64) (*SessionStatus, error) {
	today := clock.DateOf(s.now())

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := tracker.Resolve(records, today)
	todayTotal, err := tracker.TodayTotal(records, today)
	if err != nil {
		return nil, err
	}
	weekTotal, err := tracker.WeekTotal(records, today)
	if err != nil {
		return nil, err
	}

	return &SessionStatus{
		Active:       resolved.Active,
		Inconsistent: resolved.Inconsistent,
		Today:        todayTotal,
		Week:         weekTotal,
	}, nil
}

func (s *recordService) CreateRecord(ctx context.Context, userID int64, form tracker.EditForm) (*domain.TimeRecord, error) {
	patch, err := tracker.NormalizeEdit(form)
	if err != nil {
		return nil, err
	}

	// An injected record with no end time is a session start and obeys the
	// same single-open-session rule.
	if patch.End == nil {
		records, err := s.records.ListByUserAndDate(ctx, userID, patch.Date)
		if err != nil {
			return nil, err
		}
		if status := tracker.Resolve(records, patch.Date); status.Active != nil {
			return nil, tracker.ErrDuplicateActiveSession
		}
	}

	record := &domain.TimeRecord{
		UserID:     userID,
		Date:       patch.Date,
		Start:      patch.Start,
		End:        patch.End,
		Activities: patch.Activities,
	}
	if _, err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *recordService) UpdateRecord(ctx context.Context, userID, id int64, form tracker.EditForm) error {
	patch, err := tracker.NormalizeEdit(form)
	if err != nil {
		return err
	}

	record, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	// An edit that drops the end time re-opens the record and obeys the
	// same single-open-session rule; the record being edited does not
	// count against itself.
	if patch.End == nil {
		sameDay, err := s.records.ListByUserAndDate(ctx, userID, patch.Date)
		if err != nil {
			return err
		}
		others := make([]domain.TimeRecord, 0, len(sameDay))
		for _, r := range sameDay {
			if r.ID != id {
				others = append(others, r)
			}
		}
		if status := tracker.Resolve(others, patch.Date); status.Active != nil {
			return tracker.ErrDuplicateActiveSession
		}
	}

	record.Date = patch.Date
	record.Start = patch.Start
	record.End = patch.End
	record.Activities = patch.Activities
	return s.records.Update(ctx, record)
}

func (s *recordService) DeleteRecord(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}

func (s *recordService) ListRecords(ctx context.Context, userID int64) ([]domain.TimeRecord, error) {
	return s.records.ListByUser(ctx, userID)
}

func (s *recordService) ListByDate(ctx context.Context, userID int64, date clock.Date) ([]domain.TimeRecord, error) {
	return s.records.ListByUserAndDate(ctx, userID, date)
}

func (s *recordService) FilterByDate(ctx context.Context, userID int64, date string) ([]domain.TimeRecord, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tracker.FilterByDate(records, date)
}

func (s *recordService) ExportRecords(ctx context.Context, userID int64) (string, error) {
	if s.reports == nil || s.bucket == "" {
		return "", ErrStorageUnavailable
	}

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	closed, err := tracker.FilterByDate(records, "")
	if err != nil {
		return "", err
	}

	content, err := renderCSV(closed)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("user-%d/%s-%s.csv", userID, clock.DateOf(s.now()).ISO(), uuid.NewString())
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	location, err := s.reports.UploadReport(ctx, storage.UploadOptions{Bucket: s.bucket, Key: key}, content)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return location, nil
}

func (s *recordService) ListExports(ctx context.Context, userID int64) ([]storage.ObjectInfo, error) {
	if s.reports == nil || s.bucket == "" {
		return nil, ErrStorageUnavailable
	}
	return s.reports.ListReports(ctx, s.bucket, s.userPrefix(userID))
}

func (s *recordService) ExportURL(ctx context.Context, userID int64, key string) (string, error) {
	if s.reports == nil || s.bucket == "" {
		return "", ErrStorageUnavailable
	}
	if !strings.HasPrefix(key, s.userPrefix(userID)) {
		return "", repository.ErrRecordNotFound
	}
	return s.reports.GetReportURL(ctx, s.bucket, key, 15*time.Minute)
}

func (s *recordService) DeleteExports(ctx context.Context, userID int64) error {
	if s.reports == nil || s.bucket == "" {
		return ErrStorageUnavailable
	}
	return s.reports.DeleteReports(ctx, s.bucket, s.userPrefix(userID))
}

func (s *recordService) userPrefix(userID int64) string {
	prefix := fmt.Sprintf("user-%d/", userID)
	if s.prefix != "" {
		prefix = s.prefix + "/" + prefix
	}
	return prefix
}

func renderCSV(records []domain.TimeRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "start_time", "end_time", "worked", "activities"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		worked, err := r.Worked()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		row := []string{
			r.Date.Display(),
			r.Start.Display(),
			r.End.Display(),
			worked.String(),
			r.Activities,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *recordService) owned(ctx context.Context, userID, id int64) (*domain.TimeRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		// Records belonging to other users look like missing records.
		return nil, repository.ErrRecordNotFound
	}
	return record, nil
}
