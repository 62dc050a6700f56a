package runtime

import (
	"encoding/base32"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"code-lab/domain"
)

// Starter files every fresh workspace is seeded with.
const (
	seedMainJS    = "// Welcome to your shared workspace!\n// Everyone in this room sees the same files.\nconsole.log(\"hello from javascript\");\n"
	seedExamplePy = "# Run me with the python language\nprint(\"hello from python\")\n"
)

// RoomRegistry owns every live room. Rooms exist only in memory: the
// last participant leaving destroys the room and its tree immediately,
// abandoned rooms must not accumulate.
type RoomRegistry struct {
	mu    sync.RWMutex
	log   *slog.Logger
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomRegistry(log *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		log:   log,
		rooms: make(map[domain.RoomID]*domain.Room),
	}
}

// Create builds a room under an unpredictable, human-shareable short
// identifier and seeds its workspace with the starter files.
func (rr *RoomRegistry) Create() *domain.Room {
	room := domain.NewRoom(newRoomID())
	room.Update(func(t *domain.Tree) {
		t.Upsert("/main.js", domain.NewFile(seedMainJS))
		t.Upsert("/example.py", domain.NewFile(seedExamplePy))
	})

	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.rooms[room.ID] = room
	rr.log.Info("Room created", "room", room.ID)
	return room
}

// Count reports how many rooms are currently open.
func (rr *RoomRegistry) Count() int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.rooms)
}

func (rr *RoomRegistry) Get(roomID domain.RoomID) (*domain.Room, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	room, ok := rr.rooms[roomID]
	return room, ok
}

// Join adds the participant to the room's roster and returns the room
// with the resulting roster snapshot.
func (rr *RoomRegistry) Join(roomID domain.RoomID, p domain.Participant) (*domain.Room, []domain.Participant, bool) {
	room, ok := rr.Get(roomID)
	if !ok {
		return nil, nil, false
	}
	roster := room.Join(p)
	return room, roster, true
}

// Leave removes the connection from the room. When the roster empties,
// the room and its tree are destroyed on the spot; the returned flag
// reports that destruction.
func (rr *RoomRegistry) Leave(roomID domain.RoomID, connID string) ([]domain.Participant, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	room, ok := rr.rooms[roomID]
	if !ok {
		return nil, false
	}
	roster, empty := room.Leave(connID)
	if empty {
		delete(rr.rooms, roomID)
		rr.log.Info("Room destroyed, last participant left", "room", roomID)
		return nil, true
	}
	return roster, false
}

// newRoomID derives an 8-character lowercase token from a random UUID.
// Short enough to share by voice, random enough not to guess.
func newRoomID() domain.RoomID {
	u := uuid.New()
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(u[:5])
	return domain.RoomID(strings.ToLower(token))
}
