//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"code-lab/domain"
	"code-lab/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// EventSink is one consumer of room events, usually a live websocket
// session. Consume must be safe to call from any goroutine.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	SinksForRoom(roomID domain.RoomID) []SinkEntry
	SinkFor(participantID string) (EventSink, bool)
	Subscribe(participantID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(participantID string, roomID domain.RoomID)
}

// SinkEntry pairs a participant with their live sink so broadcast
// callers can exclude an originator.
type SinkEntry struct {
	ParticipantID string
	Sink          EventSink
}

// IGateway fans out events to room members. Events sent to the same
// room are delivered in the order the gateway received them; no
// ordering holds across rooms.
type IGateway interface {
	ToRoom(ctx context.Context, roomID domain.RoomID, e event.DomainEvent)
	ToRoomExcept(ctx context.Context, roomID domain.RoomID, originID string, e event.DomainEvent)
	ToParticipant(ctx context.Context, participantID string, e event.DomainEvent)
	Forget(roomID domain.RoomID)
}

// IRunner executes one request end-to-end and always returns a
// normalized result; no failure crosses this boundary as an error.
type IRunner interface {
	Run(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult
}

// IResultCache hands back the most recent execution result of a room,
// if any, for replay to late joiners.
type IResultCache interface {
	LastResult(roomID domain.RoomID) (domain.ExecutionResult, bool)
}
