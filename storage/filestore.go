// Package storage persists relayed file payloads on the server's disk.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"chatwave/contract"
)

// DiskStore writes payloads under a single directory. Stored names are
// prefixed with the arrival time in unix milliseconds so that two
// uploads of the same filename never collide.
type DiskStore struct {
	dir string
	log *slog.Logger
}

func NewDiskStore(dir string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create files directory: %w", err)
	}
	return &DiskStore{dir: dir, log: log}, nil
}

// Save writes payload to disk and returns its metadata. The MIME type
// is sniffed from the bytes, not trusted from the filename.
func (s *DiskStore) Save(filename string, payload []byte) (contract.StoredFile, error) {
	now := time.Now().UTC()

	// filepath.Base strips any path components a client may smuggle in.
	storedName := fmt.Sprintf("%d_%s", now.UnixMilli(), filepath.Base(filename))
	path := filepath.Join(s.dir, storedName)

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return contract.StoredFile{}, fmt.Errorf("write %s: %w", path, err)
	}

	mime := mimetype.Detect(payload)
	s.log.Debug("File stored", "path", path, "mime", mime.String(), "size", len(payload))

	return contract.StoredFile{
		ID:         uuid.New(),
		StoredName: storedName,
		Filename:   filename,
		MimeType:   mime.String(),
		Size:       int64(len(payload)),
		UploadedAt: now,
	}, nil
}
