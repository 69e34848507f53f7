//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"

	"chatwave/domain"
)

// MessageSink is the delivery end of one connected participant.
// Send blocks until the message is written or fails with a transport
// error; after a failure the sink is closed and rejects further sends.
type MessageSink interface {
	Send(m domain.Message) error
}

// IRegistry arbitrates usernames and routes messages between sessions.
type IRegistry interface {
	Register(username string, sink MessageSink) bool
	Unregister(username string)
	Broadcast(m domain.Message, exclude string)
	Usernames() []string
}

// FileStore persists relayed file payloads on the server.
type FileStore interface {
	Save(filename string, payload []byte) (StoredFile, error)
}

// StoredFile describes one persisted payload.
type StoredFile struct {
	ID         uuid.UUID
	StoredName string
	Filename   string
	Sender     string
	MimeType   string
	Size       int64
	UploadedAt time.Time
}

// FileIndex records stored file metadata for offline inspection.
type FileIndex interface {
	Add(f StoredFile) error
	List() ([]StoredFile, error)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
