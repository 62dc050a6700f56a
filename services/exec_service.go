package services

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/errors"
	"code-lab/runtime"
)

// Recorder receives one tick per finished execution, for telemetry.
type Recorder interface {
	RecordExecution(failed bool)
}

// ExecService runs code on behalf of a room and broadcasts the outcome
// to every member. Executions never touch the workspace tree and never
// hold a room lock: concurrent runs across rooms, and within one room,
// proceed in parallel.
type ExecService struct {
	log     *slog.Logger
	rooms   *runtime.RoomRegistry
	runner  contract.IRunner
	gateway contract.IGateway
	metrics Recorder
	recent  *lru.Cache[domain.RoomID, domain.ExecutionResult]
}

func NewExecService(log *slog.Logger, rooms *runtime.RoomRegistry,
	runner contract.IRunner, gateway contract.IGateway, metrics Recorder, cacheSize int) (*ExecService, error) {
	recent, err := lru.New[domain.RoomID, domain.ExecutionResult](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ExecService{log: log, rooms: rooms, runner: runner, gateway: gateway, metrics: metrics, recent: recent}, nil
}

// Execute validates the room, runs the request end-to-end, caches the
// result for late joiners, and broadcasts it verbatim, error flag
// included. The requester always gets a result back; the runner
// guarantees no silent hang beyond the language deadline.
func (s *ExecService) Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error) {
	if _, ok := s.rooms.Get(req.Room); !ok {
		return domain.ExecutionResult{}, errors.ErrRoomNotFound
	}
	result := s.runner.Run(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordExecution(result.Error)
	}
	s.recent.Add(req.Room, result)
	s.gateway.ToRoom(ctx, req.Room, event.ExecutionCompleted{Room: req.Room, Result: result})
	return result, nil
}

// LastResult implements contract.IResultCache.
func (s *ExecService) LastResult(roomID domain.RoomID) (domain.ExecutionResult, bool) {
	return s.recent.Get(roomID)
}
