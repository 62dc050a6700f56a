package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/errors"
	"code-lab/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	UserName string `json:"userName" validate:"required"`
}

type editPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	FilePath string `json:"filePath" validate:"required"`
	Content  string `json:"content"`
}

type cursorPayload struct {
	RoomID   string                `json:"roomId" validate:"required"`
	Position domain.CursorPosition `json:"position"`
}

type createPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	FilePath string `json:"filePath" validate:"required"`
	Content  string `json:"content"`
	Kind     string `json:"kind" validate:"omitempty,oneof=file directory"`
}

type deletePayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	FilePath string `json:"filePath" validate:"required"`
}

type renamePayload struct {
	RoomID  string `json:"roomId" validate:"required"`
	OldPath string `json:"oldPath" validate:"required"`
	NewPath string `json:"newPath" validate:"required"`
}

// Handler upgrades connections and pumps client messages into the
// workspace service.
type Handler struct {
	log        *slog.Logger
	workspace  *services.WorkspaceService
	validate   *validator.Validate
	bufferSize int
}

func NewHandler(log *slog.Logger, workspace *services.WorkspaceService, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		workspace:  workspace,
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	session := NewSession(h.log, conn, h.bufferSize)
	defer session.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go session.WritePump(ctx)

	// The room this connection has joined, if any. Disconnect is
	// implicit: whenever the read loop ends, the participant leaves.
	var joined domain.RoomID
	defer func() {
		if joined != "" {
			// The request context is gone once the connection drops.
			h.workspace.Leave(context.Background(), joined, session.ID)
		}
	}()

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		if err := h.dispatch(ctx, session, &joined, msg); err != nil {
			h.log.Debug("Client message rejected", "session", session.ID, "event", msg.Event, "err", err)
			_ = session.Consume(ctx, event.ErrorNotice{Room: joined, Message: err.Error()})
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, session *Session, joined *domain.RoomID, msg inbound) error {
	switch msg.Event {
	case "join":
		var p joinPayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		roomID := domain.RoomID(p.RoomID)
		if *joined == roomID {
			// Already a member; joining again would duplicate the
			// roster entry.
			return nil
		}
		if *joined != "" {
			// One room per connection. Switching rooms leaves the old
			// one first so no ghost member keeps it alive.
			h.workspace.Leave(ctx, *joined, session.ID)
			*joined = ""
		}
		if err := h.workspace.Join(ctx, roomID, p.UserName, session.ID, session); err != nil {
			return err
		}
		*joined = roomID
		return nil
	}

	// Everything below acts on a room, so the connection must have
	// joined one first.
	if *joined == "" {
		return errors.ErrNotJoined
	}

	switch msg.Event {
	case "editContent":
		var p editPayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		if err := h.sameRoom(*joined, p.RoomID); err != nil {
			return err
		}
		return h.workspace.EditContent(ctx, *joined, session.ID, p.FilePath, p.Content)

	case "cursorMove":
		var p cursorPayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		if err := h.sameRoom(*joined, p.RoomID); err != nil {
			return err
		}
		return h.workspace.CursorMove(ctx, *joined, session.ID, p.Position)

	case "createEntry":
		var p createPayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		if err := h.sameRoom(*joined, p.RoomID); err != nil {
			return err
		}
		kind := domain.FileNode
		if p.Kind == string(domain.DirectoryNode) {
			kind = domain.DirectoryNode
		}
		return h.workspace.CreateEntry(ctx, *joined, session.ID, p.FilePath, p.Content, kind)

	case "deleteEntry":
		var p deletePayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		if err := h.sameRoom(*joined, p.RoomID); err != nil {
			return err
		}
		return h.workspace.DeleteEntry(ctx, *joined, session.ID, p.FilePath)

	case "renameEntry":
		var p renamePayload
		if err := h.decode(msg.Payload, &p); err != nil {
			return err
		}
		if err := h.sameRoom(*joined, p.RoomID); err != nil {
			return err
		}
		return h.workspace.RenameEntry(ctx, *joined, session.ID, p.OldPath, p.NewPath)

	default:
		return fmt.Errorf("%w: unknown event %q", errors.ErrInvalidPayload, msg.Event)
	}
}

// sameRoom rejects payloads addressing any room other than the one
// this connection joined. Knowing another room's id must not grant
// write access to it.
func (h *Handler) sameRoom(joined domain.RoomID, roomID string) error {
	if domain.RoomID(roomID) != joined {
		return fmt.Errorf("%w: roomId %q is not the joined room", errors.ErrInvalidPayload, roomID)
	}
	return nil
}

func (h *Handler) decode(raw json.RawMessage, payload any) error {
	if err := json.Unmarshal(raw, payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := h.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
