package filesystem

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/indieinfra/ingest/config"
	"github.com/indieinfra/ingest/storage/sink"
	storageutil "github.com/indieinfra/ingest/storage/util"
)

// SinkImpl writes media into a local directory, e.g. a processing server's input folder.
type SinkImpl struct {
	basePath string
	pattern  *storageutil.PathPattern
	mu       sync.Mutex
	now      func() time.Time
}

func NewFilesystemSink(cfg *config.FilesystemSinkStrategy) (*SinkImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("filesystem sink config is nil")
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	pattern := storageutil.DefaultSinkPattern()
	if cfg.PathPattern != "" {
		pattern = storageutil.NewPathPattern(cfg.PathPattern)
	}

	return &SinkImpl{
		basePath: cfg.Path,
		pattern:  pattern,
		now:      time.Now,
	}, nil
}

// Upload writes obj, replacing a file of the same name.
func (fs *SinkImpl) Upload(ctx context.Context, obj *sink.Object) (string, error) {
	if obj == nil {
		return "", fmt.Errorf("object is required")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	relPath, err := fs.pattern.Generate(stem(obj), fs.now(), extension(obj))
	if err != nil {
		return "", fmt.Errorf("failed to generate path: %w", err)
	}

	absPath := filepath.Join(fs.basePath, relPath)
	if !strings.HasPrefix(absPath, filepath.Clean(fs.basePath)+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes sink directory", relPath)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".ingest-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if _, err := tmp.Write(obj.Data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), absPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return "file://" + filepath.ToSlash(absPath), nil
}

func extension(obj *sink.Object) string {
	ext := filepath.Ext(obj.Name)
	if ext == "" && obj.ContentType != "" {
		if exts, err := mime.ExtensionsByType(obj.ContentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return strings.ToLower(ext)
}

func stem(obj *sink.Object) string {
	base := strings.TrimSuffix(filepath.Base(obj.Name), filepath.Ext(obj.Name))
	if s := slug.Make(base); s != "" {
		return s
	}
	return uuid.New().String()
}
