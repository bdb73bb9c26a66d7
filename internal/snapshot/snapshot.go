// Package snapshot exports the content catalog to object storage as a
// fixtures file and reads such files back for seeding.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/metrics"
)

const (
	keyPrefix   = "snapshots/"
	contentType = "application/yaml"
)

// ObjectStore is the subset of storage.MinIOStorage the exporter needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Source lists the collections that go into a snapshot.
type Source interface {
	Services(ctx context.Context) ([]*content.Service, error)
	Documents(ctx context.Context) ([]*content.Document, error)
	Tutorials(ctx context.Context) ([]*content.Tutorial, error)
}

// Result describes one uploaded snapshot.
type Result struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Services  int       `json:"services"`
	Documents int       `json:"documents"`
	Tutorials int       `json:"tutorials"`
	CreatedAt time.Time `json:"createdAt"`
}

type Exporter struct {
	src     Source
	objects ObjectStore
	expiry  time.Duration
	now     func() time.Time
}

// NewExporter returns an exporter; urlExpiry bounds the presigned download URL.
func NewExporter(src Source, objects ObjectStore, urlExpiry time.Duration) *Exporter {
	if urlExpiry <= 0 {
		urlExpiry = time.Hour
	}
	return &Exporter{src: src, objects: objects, expiry: urlExpiry, now: time.Now}
}

func deref[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, p := range in {
		out = append(out, *p)
	}
	return out
}

// Export writes services, documents and tutorials to a new object. Users are
// left out because they carry credentials.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	services, err := e.src.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	documents, err := e.src.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	tutorials, err := e.src.Tutorials(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}
	fx := &seed.Fixtures{
		Services:  deref(services),
		Documents: deref(documents),
		Tutorials: deref(tutorials),
	}

	var buf bytes.Buffer
	if err := seed.Encode(&buf, fx); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	now := e.now().UTC()
	key := fmt.Sprintf("%s%s-%s.yaml", keyPrefix, now.Format("20060102T150405Z"), uuid.NewString())
	if err := e.objects.UploadFile(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), contentType); err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	url, err := e.objects.GetPresignedURL(ctx, key, e.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	metrics.SnapshotsExported.Inc()
	logger.Infow("snapshot exported", "key", key, "bytes", buf.Len())

	return &Result{
		Key:       key,
		URL:       url,
		Services:  len(fx.Services),
		Documents: len(fx.Documents),
		Tutorials: len(fx.Tutorials),
		CreatedAt: now,
	}, nil
}

// Fetch downloads a snapshot and decodes it as fixtures.
func (e *Exporter) Fetch(ctx context.Context, key string) (*seed.Fixtures, error) {
	rc, err := e.objects.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download snapshot %s: %w", key, err)
	}
	defer rc.Close()
	return seed.Load(rc)
}
