package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"code-lab/runtime"
	"code-lab/services"
)

type wireEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newWorkspaceStack(t *testing.T) (*httptest.Server, *runtime.RoomRegistry) {
	t.Helper()
	log := slog.Default()
	registry := runtime.NewRegistry()
	gateway := runtime.NewGateway(log, registry, time.Second)
	rooms := runtime.NewRoomRegistry(log)
	workspace := services.NewWorkspaceService(log, rooms, registry, gateway, nil)
	handler := NewHandler(log, workspace, 32)

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWS))
	t.Cleanup(server.Close)
	return server, rooms
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventName string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(map[string]any{"event": eventName, "payload": json.RawMessage(raw)}))
}

// readUntil drains events until the named one arrives. Fan-out order is
// deterministic per room but joins from other members interleave, so
// tests state which event they care about.
func readUntil(t *testing.T, conn *websocket.Conn, eventName string) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg wireEvent
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q", eventName)
		if msg.Event == eventName {
			return msg
		}
	}
}

func TestHandleWS_JoinDeliversSnapshotThenRoster(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	conn := dial(t, server)
	send(t, conn, "join", map[string]string{"roomId": string(room.ID), "userName": "alice"})

	// First frame is always the workspace snapshot
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var first wireEvent
	req.NoError(conn.ReadJSON(&first))
	req.Equal("filesSnapshot", first.Event)

	var snapshot struct {
		Files struct {
			Children map[string]json.RawMessage `json:"children"`
		} `json:"files"`
	}
	req.NoError(json.Unmarshal(first.Payload, &snapshot))
	req.Contains(snapshot.Files.Children, "main.js")
	req.Contains(snapshot.Files.Children, "example.py")

	roster := readUntil(t, conn, "rosterChanged")
	var members struct {
		Members []struct {
			Name string `json:"name"`
		} `json:"members"`
	}
	req.NoError(json.Unmarshal(roster.Payload, &members))
	req.Len(members.Members, 1)
	req.Equal("alice", members.Members[0].Name)
}

func TestHandleWS_JoinUnknownRoomAnswersError(t *testing.T) {
	req := require.New(t)
	server, _ := newWorkspaceStack(t)

	conn := dial(t, server)
	send(t, conn, "join", map[string]string{"roomId": "nope1234", "userName": "alice"})

	msg := readUntil(t, conn, "errorNotice")
	var notice struct {
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &notice))
	req.Contains(notice.Message, "room not found")
}

func TestHandleWS_EditReachesOtherMembersOnly(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	alice := dial(t, server)
	send(t, alice, "join", map[string]string{"roomId": string(room.ID), "userName": "alice"})
	readUntil(t, alice, "rosterChanged")

	bob := dial(t, server)
	send(t, bob, "join", map[string]string{"roomId": string(room.ID), "userName": "bob"})
	readUntil(t, bob, "rosterChanged")
	readUntil(t, alice, "memberJoined")

	// When bob edits a file
	send(t, bob, "editContent", map[string]string{
		"roomId":   string(room.ID),
		"filePath": "/main.js",
		"content":  "let x = 1",
	})

	// Then alice sees the new content
	msg := readUntil(t, alice, "contentUpdated")
	var update struct {
		FilePath string `json:"filePath"`
		Content  string `json:"content"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &update))
	req.Equal("/main.js", update.FilePath)
	req.Equal("let x = 1", update.Content)

	// And the room tree holds it
	snapshot, ok := rooms.Get(room.ID)
	req.True(ok)
	req.Equal("let x = 1", snapshot.Snapshot().Children["main.js"].Content)
}

func TestHandleWS_StructuralEventsPropagate(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	alice := dial(t, server)
	send(t, alice, "join", map[string]string{"roomId": string(room.ID), "userName": "alice"})
	readUntil(t, alice, "rosterChanged")

	bob := dial(t, server)
	send(t, bob, "join", map[string]string{"roomId": string(room.ID), "userName": "bob"})
	readUntil(t, bob, "rosterChanged")
	readUntil(t, alice, "memberJoined")

	send(t, bob, "createEntry", map[string]string{
		"roomId":   string(room.ID),
		"filePath": "/src/app.go",
		"kind":     "file",
	})
	created := readUntil(t, alice, "entryCreated")
	var createdBody struct {
		FilePath string `json:"filePath"`
	}
	req.NoError(json.Unmarshal(created.Payload, &createdBody))
	req.Equal("/src/app.go", createdBody.FilePath)

	send(t, bob, "renameEntry", map[string]string{
		"roomId":  string(room.ID),
		"oldPath": "/src/app.go",
		"newPath": "/src/main.go",
	})
	renamed := readUntil(t, alice, "entryRenamed")
	var renamedBody struct {
		OldPath string `json:"oldPath"`
		NewPath string `json:"newPath"`
	}
	req.NoError(json.Unmarshal(renamed.Payload, &renamedBody))
	req.Equal("/src/main.go", renamedBody.NewPath)

	send(t, bob, "deleteEntry", map[string]string{
		"roomId":   string(room.ID),
		"filePath": "/src",
	})
	readUntil(t, alice, "entryDeleted")
}

func TestHandleWS_DisconnectRemovesMember(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	alice := dial(t, server)
	send(t, alice, "join", map[string]string{"roomId": string(room.ID), "userName": "alice"})
	readUntil(t, alice, "rosterChanged")

	bob := dial(t, server)
	send(t, bob, "join", map[string]string{"roomId": string(room.ID), "userName": "bob"})
	readUntil(t, bob, "rosterChanged")
	readUntil(t, alice, "memberJoined")

	// When bob drops the connection
	req.NoError(bob.Close())

	msg := readUntil(t, alice, "memberLeft")
	var left struct {
		Roster []struct {
			Name string `json:"name"`
		} `json:"roster"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &left))
	req.Len(left.Roster, 1)
	req.Equal("alice", left.Roster[0].Name)
}

func TestHandleWS_SecondJoinSwitchesRooms(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	roomA := rooms.Create()
	roomB := rooms.Create()

	conn := dial(t, server)
	send(t, conn, "join", map[string]string{"roomId": string(roomA.ID), "userName": "alice"})
	readUntil(t, conn, "rosterChanged")

	// When the same connection joins another room
	send(t, conn, "join", map[string]string{"roomId": string(roomB.ID), "userName": "alice"})
	readUntil(t, conn, "rosterChanged")

	// Then the first room lost its only member and was destroyed,
	// and only the second one holds alice
	_, ok := rooms.Get(roomA.ID)
	req.False(ok, "first room must not survive as a ghost")
	req.Len(roomB.Members(), 1)

	// Disconnecting cleans the second room up the same way
	req.NoError(conn.Close())
	req.Eventually(func() bool {
		_, ok := rooms.Get(roomB.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWS_PayloadForAnotherRoomIsRejected(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	roomA := rooms.Create()
	roomB := rooms.Create()

	conn := dial(t, server)
	send(t, conn, "join", map[string]string{"roomId": string(roomA.ID), "userName": "alice"})
	readUntil(t, conn, "rosterChanged")

	// When alice addresses a room she never joined
	send(t, conn, "editContent", map[string]string{
		"roomId":   string(roomB.ID),
		"filePath": "/main.js",
		"content":  "sneaky",
	})

	msg := readUntil(t, conn, "errorNotice")
	var notice struct {
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &notice))
	req.Contains(notice.Message, "not the joined room")

	// The other room's tree stays untouched
	req.NotEqual("sneaky", roomB.Snapshot().Children["main.js"].Content)
	req.Empty(roomB.Members())
}

func TestHandleWS_EditBeforeJoinIsRejected(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	conn := dial(t, server)
	send(t, conn, "editContent", map[string]string{
		"roomId":   string(room.ID),
		"filePath": "/main.js",
		"content":  "sneaky",
	})

	msg := readUntil(t, conn, "errorNotice")
	var notice struct {
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &notice))
	req.Contains(notice.Message, "joined")

	// The tree stays untouched
	req.NotEqual("sneaky", room.Snapshot().Children["main.js"].Content)
}

func TestHandleWS_UnknownEventAnswersError(t *testing.T) {
	req := require.New(t)
	server, rooms := newWorkspaceStack(t)
	room := rooms.Create()

	conn := dial(t, server)
	send(t, conn, "join", map[string]string{"roomId": string(room.ID), "userName": "alice"})
	readUntil(t, conn, "rosterChanged")

	send(t, conn, "teleport", map[string]string{"roomId": string(room.ID)})

	msg := readUntil(t, conn, "errorNotice")
	var notice struct {
		Message string `json:"message"`
	}
	req.NoError(json.Unmarshal(msg.Payload, &notice))
	req.Contains(notice.Message, "teleport")
}
