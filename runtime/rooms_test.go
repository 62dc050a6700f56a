package runtime

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"code-lab/domain"
)

func TestRoomRegistry_Create_SeedsStarterFiles(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(slog.Default())

	room := rr.Create()

	// The fresh workspace contains exactly the two starter files
	snapshot := room.Snapshot()
	req.Len(snapshot.Children, 2)
	req.Contains(snapshot.Children, "main.js")
	req.Contains(snapshot.Children, "example.py")
	req.Equal("/main.js", snapshot.Children["main.js"].Path)
	req.NotEmpty(snapshot.Children["example.py"].Content)
}

func TestRoomRegistry_IDs_ShortAndDistinct(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(slog.Default())
	shape := regexp.MustCompile(`^[a-z2-7]{8}$`)

	seen := map[domain.RoomID]struct{}{}
	for i := 0; i < 100; i++ {
		room := rr.Create()
		req.Regexp(shape, string(room.ID))
		_, dup := seen[room.ID]
		req.False(dup, "duplicate room id %s", room.ID)
		seen[room.ID] = struct{}{}
	}
}

func TestRoomRegistry_Leave_LastParticipantDestroysRoom(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(slog.Default())
	room := rr.Create()
	connID := uuid.NewString()
	_, _, ok := rr.Join(room.ID, domain.Participant{ConnID: connID, Name: "Alice"})
	req.True(ok)

	// When the only member leaves
	_, destroyed := rr.Leave(room.ID, connID)

	// Then the room is gone, immediately
	req.True(destroyed)
	_, ok = rr.Get(room.ID)
	req.False(ok)
	req.Zero(rr.Count())
}

func TestRoomRegistry_Leave_SurvivorsKeepTheRoom(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(slog.Default())
	room := rr.Create()
	alice := uuid.NewString()
	bob := uuid.NewString()
	rr.Join(room.ID, domain.Participant{ConnID: alice, Name: "Alice"})
	rr.Join(room.ID, domain.Participant{ConnID: bob, Name: "Bob"})

	roster, destroyed := rr.Leave(room.ID, alice)

	req.False(destroyed)
	req.Len(roster, 1)
	req.Equal("Bob", roster[0].Name)
	_, ok := rr.Get(room.ID)
	req.True(ok)
}

func TestRoomRegistry_Join_UnknownRoom(t *testing.T) {
	req := require.New(t)
	rr := NewRoomRegistry(slog.Default())

	_, _, ok := rr.Join("nope", domain.Participant{ConnID: uuid.NewString()})
	req.False(ok)
}
