package errors

import "fmt"

var (
	ErrSessionClosed   = fmt.Errorf("session closed")
	ErrFrameTooLarge   = fmt.Errorf("frame exceeds maximum size")
	ErrFileTooLarge    = fmt.Errorf("file exceeds maximum size")
	ErrInvalidUsername = fmt.Errorf("invalid username")
	ErrNotConnected    = fmt.Errorf("not connected")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)
