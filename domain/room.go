package domain

import (
	"sync"
	"time"

	"github.com/samber/lo"
)

type RoomID string

// Room is an isolated collaboration session. It exclusively owns its
// workspace tree and member roster; both are mutated only under the
// room mutex, so concurrent edits arriving from many connections are
// applied in receipt order. Last write wins at file granularity.
type Room struct {
	ID        RoomID
	CreatedAt time.Time

	mu      sync.Mutex
	members []Participant
	tree    *Tree
}

func NewRoom(id RoomID) *Room {
	return &Room{ID: id, CreatedAt: time.Now(), tree: NewTree()}
}

// Join appends the participant to the roster (ordered by join time)
// and returns the resulting roster snapshot.
func (r *Room) Join(p Participant) []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, p)
	return r.rosterLocked()
}

// Leave removes the connection from the roster. The second return value
// reports whether the room is now empty; the registry destroys empty
// rooms immediately, abandoned rooms must not accumulate.
func (r *Room) Leave(connID string) ([]Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = lo.Reject(r.members, func(m Participant, _ int) bool {
		return m.ConnID == connID
	})
	return r.rosterLocked(), len(r.members) == 0
}

func (r *Room) Members() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// Update runs fn against the workspace tree under the room mutex. This
// is the room's serialization scope: every structural or content
// mutation goes through here, and callers broadcast the mutation's
// event from inside fn so delivery order cannot invert apply order.
func (r *Room) Update(fn func(*Tree)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.tree)
}

// Snapshot returns a deep copy of the workspace root, safe to hand to
// sinks without aliasing the live tree.
func (r *Room) Snapshot() *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Root().Clone()
}

func (r *Room) rosterLocked() []Participant {
	return append([]Participant(nil), r.members...)
}
