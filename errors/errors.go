package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrRoomNotFound        = fmt.Errorf("room not found")
	ErrUnsupportedLanguage = fmt.Errorf("unsupported language")
	ErrInvalidPayload      = fmt.Errorf("invalid payload")
	ErrNotJoined           = fmt.Errorf("participant has not joined a room")
)
