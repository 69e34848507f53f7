package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chatwave/contract"
)

const fileKeyPrefix = "file:"

// FileIndexRepository records stored file metadata in BadgerDB.
// The key is formatted as "file:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if
//     two files arrive at the same nanosecond.
type FileIndexRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewFileIndexRepository(db *badger.DB, log *slog.Logger) *FileIndexRepository {
	return &FileIndexRepository{db: db, log: log}
}

type indexRow struct {
	ID         uuid.UUID `json:"id"`
	StoredName string    `json:"stored_name"`
	Filename   string    `json:"filename"`
	Sender     string    `json:"sender"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Add persists one stored-file record.
func (r *FileIndexRepository) Add(f contract.StoredFile) error {
	key := fmt.Sprintf("%s%019d:%s", fileKeyPrefix, f.UploadedAt.UnixNano(), f.ID)

	data, err := json.Marshal(toIndexRow(f))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// List returns every recorded file in upload order.
func (r *FileIndexRepository) List() ([]contract.StoredFile, error) {
	var rows [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(fileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				rows = append(rows, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := make([]contract.StoredFile, 0, len(rows))
	for _, data := range rows {
		var row indexRow
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		files = append(files, fromIndexRow(row))
	}
	return files, nil
}

func toIndexRow(f contract.StoredFile) indexRow {
	return indexRow{
		ID:         f.ID,
		StoredName: f.StoredName,
		Filename:   f.Filename,
		Sender:     f.Sender,
		MimeType:   f.MimeType,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}

func fromIndexRow(row indexRow) contract.StoredFile {
	return contract.StoredFile{
		ID:         row.ID,
		StoredName: row.StoredName,
		Filename:   row.Filename,
		Sender:     row.Sender,
		MimeType:   row.MimeType,
		Size:       row.Size,
		UploadedAt: row.UploadedAt,
	}
}
