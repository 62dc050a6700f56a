package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
)

type Sink struct {
	id string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := uuid.NewString()
	roomID := domain.RoomID("abc123")
	sink := Sink{id: "s1"}

	// Given no user is connected
	// And no room exists
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)

	// When a participant subscribes a room
	registry.Subscribe(participantID, roomID, sink)

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sink, registry.Sessions[participantID])

	req.Len(registry.RoomMembers, 1)
	req.Contains(registry.RoomMembers[roomID], participantID)

	entries := registry.SinksForRoom(roomID)
	req.Len(entries, 1)
	req.Equal(contract.SinkEntry{ParticipantID: participantID, Sink: sink}, entries[0])
}

func TestRegistry_Subscribe_One_Room_Multiple_Participants(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID1 := uuid.NewString()
	participantID2 := uuid.NewString()
	roomID := domain.RoomID("abc123")

	// When participants subscribe a room
	registry.Subscribe(participantID1, roomID, Sink{id: "s1"})
	registry.Subscribe(participantID2, roomID, Sink{id: "s2"})

	// Then
	req.Len(registry.Sessions, 2)
	req.Len(registry.RoomMembers[roomID], 2)
	req.Len(registry.SinksForRoom(roomID), 2)
}

func TestRegistry_Unsubscribe_RemovesEmptyRoomEntry(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := uuid.NewString()
	roomID := domain.RoomID("abc123")
	registry.Subscribe(participantID, roomID, Sink{})

	// When the only participant unsubscribes
	registry.Unsubscribe(participantID, roomID)

	// Then no empty set is left behind
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)
	req.Nil(registry.SinksForRoom(roomID))
}

func TestRegistry_SinkFor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := uuid.NewString()
	sink := Sink{id: "s1"}
	registry.Subscribe(participantID, "abc123", sink)

	got, ok := registry.SinkFor(participantID)
	req.True(ok)
	req.Equal(sink, got)

	_, ok = registry.SinkFor(uuid.NewString())
	req.False(ok)
}
