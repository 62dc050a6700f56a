package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoom_Join_KeepsJoinOrder(t *testing.T) {
	req := require.New(t)
	room := NewRoom("abc123")

	alice := Participant{ConnID: uuid.NewString(), Name: "Alice", JoinedAt: time.Now()}
	bob := Participant{ConnID: uuid.NewString(), Name: "Bob", JoinedAt: time.Now()}

	room.Join(alice)
	roster := room.Join(bob)

	req.Len(roster, 2)
	req.Equal("Alice", roster[0].Name)
	req.Equal("Bob", roster[1].Name)
}

func TestRoom_Leave_ReportsEmptyRoom(t *testing.T) {
	req := require.New(t)
	room := NewRoom("abc123")
	alice := Participant{ConnID: uuid.NewString(), Name: "Alice"}
	bob := Participant{ConnID: uuid.NewString(), Name: "Bob"}
	room.Join(alice)
	room.Join(bob)

	roster, empty := room.Leave(alice.ConnID)
	req.False(empty)
	req.Len(roster, 1)
	req.Equal("Bob", roster[0].Name)

	roster, empty = room.Leave(bob.ConnID)
	req.True(empty)
	req.Empty(roster)
}

func TestRoom_Snapshot_DoesNotAliasLiveTree(t *testing.T) {
	req := require.New(t)
	room := NewRoom("abc123")
	room.Update(func(tr *Tree) {
		tr.Upsert("/a.txt", NewFile("before"))
	})

	snapshot := room.Snapshot()

	// Mutating the room after the snapshot must not leak into it
	room.Update(func(tr *Tree) {
		tr.Upsert("/a.txt", NewFile("after"))
	})

	req.Equal("before", snapshot.Children["a.txt"].Content)
}

func TestRoom_Update_SerializesConcurrentMutations(t *testing.T) {
	req := require.New(t)
	room := NewRoom("abc123")

	// Many goroutines hammering the same parent directory
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			room.Update(func(tr *Tree) {
				tr.Upsert("/shared.txt", NewFile("x"))
				tr.Remove("/shared.txt")
			})
		}(i)
	}
	wg.Wait()

	// Each update ran create-then-delete atomically, so the entry is gone
	_, ok := room.Snapshot().Children["shared.txt"]
	req.False(ok)
}
