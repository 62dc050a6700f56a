// Package runtime wires rooms, sessions, and broadcast fan-out. It
// orchestrates the system without containing business logic or domain
// rules.
package runtime

import (
	"sync"

	"code-lab/contract"
	"code-lab/domain"
)

type Set map[string]struct{}

// Registry tracks live connections and their room membership.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // map participant -> Sink
	RoomMembers map[domain.RoomID]Set         // map room to participants
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		RoomMembers: make(map[domain.RoomID]Set),
	}
}

// SinksForRoom retrieves all active delivery targets for a room.
// It performs a two-step lookup:
// 1. Identifies participant IDs associated with the room via RoomMembers.
// 2. Resolves those IDs into actual EventSinks using the Sessions map.
//
// The snapshot is taken at call time: a participant who disconnects
// mid-broadcast simply does not receive that event. Returns nil if the
// room doesn't exist or has no members.
func (r *Registry) SinksForRoom(roomID domain.RoomID) []contract.SinkEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[roomID]
	if !ok {
		return nil
	}
	var entries []contract.SinkEntry
	for participantID := range members {
		if sink, exists := r.Sessions[participantID]; exists {
			entries = append(entries, contract.SinkEntry{ParticipantID: participantID, Sink: sink})
		}
	}
	return entries
}

func (r *Registry) SinkFor(participantID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.Sessions[participantID]
	return sink, ok
}

// Subscribe registers a participant's active connection and assigns them to a specific room.
// It ensures thread-safe updates to both the global session directory and the room-specific membership set.
// If the room does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Subscribe(participantID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[participantID] = sink

	if _, ok := r.RoomMembers[roomID]; !ok {
		r.RoomMembers[roomID] = make(Set)
	}
	r.RoomMembers[roomID][participantID] = struct{}{}
}

// Unsubscribe removes a participant from the registry and their current room.
// It cleans up the session and ensures no empty sets are left in the room map
// to prevent memory leaks over time.
func (r *Registry) Unsubscribe(participantID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, participantID)

	if members, ok := r.RoomMembers[roomID]; ok {
		delete(members, participantID)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.RoomMembers, roomID)
		}
	}
}
