// Package archive stores exported workbooks in object storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"stockroom/internal/config"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Archiver interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}

// SnapshotName is the object name used for a workbook exported at t.
func SnapshotName(t time.Time) string {
	return "snapshots/" + t.UTC().Format("20060102T150405Z") + ".xlsx"
}

// New returns a MinIO backed archiver, or a Nop when no endpoint is
// configured.
func New(cfg config.Archive, lg *zap.SugaredLogger) (Archiver, error) {
	if !cfg.Enabled() {
		return Nop{lg: lg}, nil
	}
	return NewMinio(cfg, lg)
}

type MinioArchiver struct {
	client *minio.Client
	bucket string
	lg     *zap.SugaredLogger

	mu    sync.Mutex
	ready bool
}

func NewMinio(cfg config.Archive, lg *zap.SugaredLogger) (*MinioArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive client: %w", err)
	}
	return &MinioArchiver{client: client, bucket: cfg.Bucket, lg: lg}, nil
}

func (a *MinioArchiver) Bucket() string { return a.bucket }

// ensureBucket creates the bucket on first use.
func (a *MinioArchiver) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		a.lg.Infow("archive bucket created", "bucket", a.bucket)
	}
	a.ready = true
	return nil
}

func (a *MinioArchiver) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}
	info, err := a.client.PutObject(ctx, a.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: workbookContentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	a.lg.Infow("workbook archived", "bucket", a.bucket, "object", name, "size", info.Size)
	return nil
}

// Nop discards archived objects.
type Nop struct {
	lg *zap.SugaredLogger
}

func (n Nop) Put(_ context.Context, name string, r io.Reader, _ int64) error {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	if n.lg != nil {
		n.lg.Debugw("archive disabled, snapshot discarded", "object", name)
	}
	return nil
}
