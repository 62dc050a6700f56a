package services

import (
	"context"
	"log/slog"
	"time"

	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/errors"
	"code-lab/runtime"
)

// WorkspaceService handles everything a connected participant does to a
// room: joining, leaving, editing file content, structural operations,
// and cursor relay. Tree mutations broadcast from inside the room's
// Update scope, so the event order members observe always matches the
// order the mutations were applied in.
type WorkspaceService struct {
	log      *slog.Logger
	rooms    *runtime.RoomRegistry
	registry contract.IRegistry
	gateway  contract.IGateway
	replay   contract.IResultCache
}

// NewWorkspaceService wires the service. replay may be nil; late
// joiners then simply get no executionReplay event.
func NewWorkspaceService(log *slog.Logger, rooms *runtime.RoomRegistry,
	registry contract.IRegistry, gateway contract.IGateway, replay contract.IResultCache) *WorkspaceService {
	return &WorkspaceService{log: log, rooms: rooms, registry: registry, gateway: gateway, replay: replay}
}

// Join subscribes the connection to the room, sends the workspace
// snapshot to the joiner only, and announces the new roster to
// everyone.
func (s *WorkspaceService) Join(ctx context.Context, roomID domain.RoomID, userName, connID string, sink contract.EventSink) error {
	member := domain.Participant{ConnID: connID, Name: userName, JoinedAt: time.Now()}
	room, roster, ok := s.rooms.Join(roomID, member)
	if !ok {
		return errors.ErrRoomNotFound
	}
	s.registry.Subscribe(connID, roomID, sink)

	s.gateway.ToParticipant(ctx, connID, event.FilesSnapshot{Room: roomID, Tree: room.Snapshot()})
	if s.replay != nil {
		if result, cached := s.replay.LastResult(roomID); cached {
			s.gateway.ToParticipant(ctx, connID, event.ExecutionReplay{Room: roomID, Result: result})
		}
	}
	s.gateway.ToRoomExcept(ctx, roomID, connID, event.MemberJoined{Room: roomID, Member: member, Roster: roster})
	s.gateway.ToRoom(ctx, roomID, event.RosterChanged{Room: roomID, Roster: roster})
	return nil
}

// Leave drops the connection. The last member leaving destroys the
// room; survivors learn the new roster.
func (s *WorkspaceService) Leave(ctx context.Context, roomID domain.RoomID, connID string) {
	s.registry.Unsubscribe(connID, roomID)
	roster, destroyed := s.rooms.Leave(roomID, connID)
	if destroyed {
		s.gateway.Forget(roomID)
		return
	}
	s.gateway.ToRoom(ctx, roomID, event.MemberLeft{Room: roomID, MemberID: connID, Roster: roster})
	s.gateway.ToRoom(ctx, roomID, event.RosterChanged{Room: roomID, Roster: roster})
}

// EditContent replaces the file's content. Last write wins at file
// granularity; there is no merge.
func (s *WorkspaceService) EditContent(ctx context.Context, roomID domain.RoomID, connID, path, content string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	room.Update(func(t *domain.Tree) {
		t.Upsert(path, domain.NewFile(content))
		s.gateway.ToRoomExcept(ctx, roomID, connID, event.ContentUpdated{Room: roomID, Path: path, Content: content})
	})
	return nil
}

// CursorMove relays a cursor position to the other members. Positions
// are never stored.
func (s *WorkspaceService) CursorMove(ctx context.Context, roomID domain.RoomID, connID string, pos domain.CursorPosition) error {
	if _, ok := s.rooms.Get(roomID); !ok {
		return errors.ErrRoomNotFound
	}
	s.gateway.ToRoomExcept(ctx, roomID, connID, event.CursorMoved{Room: roomID, MemberID: connID, Position: pos})
	return nil
}

// CreateEntry inserts a file or directory, auto-creating missing parent
// directories.
func (s *WorkspaceService) CreateEntry(ctx context.Context, roomID domain.RoomID, connID, path, content string, kind domain.NodeKind) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	var created *domain.Node
	room.Update(func(t *domain.Tree) {
		node := domain.NewFile(content)
		if kind == domain.DirectoryNode {
			node = domain.NewDirectory()
		}
		if n := t.Upsert(path, node); n != nil {
			created = n.Clone()
			s.gateway.ToRoomExcept(ctx, roomID, connID, event.EntryCreated{Room: roomID, Path: created.Path, Node: created})
		}
	})
	if created == nil {
		return errors.ErrInvalidPayload
	}
	return nil
}

// DeleteEntry removes an entry, subtree included. A missing path is a
// silent no-op: nothing is broadcast, nothing fails.
func (s *WorkspaceService) DeleteEntry(ctx context.Context, roomID domain.RoomID, connID, path string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	room.Update(func(t *domain.Tree) {
		if t.Remove(path) {
			s.gateway.ToRoomExcept(ctx, roomID, connID, event.EntryDeleted{Room: roomID, Path: path})
		}
	})
	return nil
}

// RenameEntry moves an entry, auto-creating missing destination
// directories. A source that does not resolve is a silent no-op.
func (s *WorkspaceService) RenameEntry(ctx context.Context, roomID domain.RoomID, connID, oldPath, newPath string) error {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	room.Update(func(t *domain.Tree) {
		if t.Move(oldPath, newPath) {
			s.gateway.ToRoomExcept(ctx, roomID, connID, event.EntryRenamed{Room: roomID, OldPath: oldPath, NewPath: newPath})
		}
	})
	return nil
}
