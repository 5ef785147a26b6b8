package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket string
	Key    string
}

// Service archives exported timesheet reports in remote object storage.
type Service interface {
	UploadReport(ctx context.Context, opts UploadOptions, content []byte) (string, error)
	ListReports(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeleteReports(ctx context.Context, bucket, prefix string) error
	GetReportURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
