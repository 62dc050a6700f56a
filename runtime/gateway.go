package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
)

// Gateway fans out domain events to the members of a room.
//
// Delivery per room goes through a dedicated mutex, so events sent to
// one room reach every member in the order the gateway received them:
// a single ordering point per room, no ordering across rooms. Delivery
// is best-effort; a sink that errors or times out loses that event and
// the broadcast moves on.
type Gateway struct {
	log         *slog.Logger
	registry    contract.IRegistry
	sinkTimeout time.Duration

	mu        sync.Mutex
	roomLocks map[domain.RoomID]*sync.Mutex
}

func NewGateway(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration) *Gateway {
	return &Gateway{
		log:         log,
		registry:    registry,
		sinkTimeout: sinkTimeout,
		roomLocks:   make(map[domain.RoomID]*sync.Mutex),
	}
}

func (g *Gateway) ToRoom(ctx context.Context, roomID domain.RoomID, e event.DomainEvent) {
	g.deliver(ctx, roomID, "", e)
}

// ToRoomExcept delivers to every member but the originator, who already
// applied the mutation locally.
func (g *Gateway) ToRoomExcept(ctx context.Context, roomID domain.RoomID, originID string, e event.DomainEvent) {
	g.deliver(ctx, roomID, originID, e)
}

func (g *Gateway) ToParticipant(ctx context.Context, participantID string, e event.DomainEvent) {
	sink, ok := g.registry.SinkFor(participantID)
	if !ok {
		g.log.Debug("No sink for participant, event dropped", "participant", participantID, "event", e.Name())
		return
	}
	g.consume(ctx, participantID, sink, e)
}

func (g *Gateway) deliver(ctx context.Context, roomID domain.RoomID, skipID string, e event.DomainEvent) {
	lock := g.lockFor(roomID)
	lock.Lock()
	defer lock.Unlock()

	// Membership snapshot taken at delivery time: a participant who
	// disconnected mid-broadcast is simply absent.
	for _, entry := range g.registry.SinksForRoom(roomID) {
		if skipID != "" && entry.ParticipantID == skipID {
			continue
		}
		g.consume(ctx, entry.ParticipantID, entry.Sink, e)
	}
}

func (g *Gateway) consume(ctx context.Context, participantID string, sink contract.EventSink, e event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, g.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, e); err != nil {
		g.log.Warn("Sink rejected event", "participant", participantID, "event", e.Name(), "err", err)
	}
}

func (g *Gateway) lockFor(roomID domain.RoomID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		g.roomLocks[roomID] = lock
	}
	return lock
}

// Forget drops the ordering lock of a destroyed room.
func (g *Gateway) Forget(roomID domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.roomLocks, roomID)
}
