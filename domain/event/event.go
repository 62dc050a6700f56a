// Package event defines the domain events fanned out to room members.
// Event names are the wire-level message types seen by clients.
package event

import (
	"code-lab/domain"
)

type DomainEvent interface {
	RoomID() domain.RoomID
	Name() string
}

// FilesSnapshot carries a deep copy of the whole workspace tree. It is
// sent once, to the joining participant only.
type FilesSnapshot struct {
	Room domain.RoomID `json:"-"`
	Tree *domain.Node  `json:"files"`
}

func (e FilesSnapshot) RoomID() domain.RoomID { return e.Room }
func (e FilesSnapshot) Name() string          { return "filesSnapshot" }

type MemberJoined struct {
	Room   domain.RoomID        `json:"-"`
	Member domain.Participant   `json:"member"`
	Roster []domain.Participant `json:"roster"`
}

func (e MemberJoined) RoomID() domain.RoomID { return e.Room }
func (e MemberJoined) Name() string          { return "memberJoined" }

type MemberLeft struct {
	Room     domain.RoomID        `json:"-"`
	MemberID string               `json:"memberId"`
	Roster   []domain.Participant `json:"roster"`
}

func (e MemberLeft) RoomID() domain.RoomID { return e.Room }
func (e MemberLeft) Name() string          { return "memberLeft" }

type RosterChanged struct {
	Room   domain.RoomID        `json:"-"`
	Roster []domain.Participant `json:"members"`
}

func (e RosterChanged) RoomID() domain.RoomID { return e.Room }
func (e RosterChanged) Name() string          { return "rosterChanged" }

type ContentUpdated struct {
	Room    domain.RoomID `json:"-"`
	Path    string        `json:"filePath"`
	Content string        `json:"content"`
}

func (e ContentUpdated) RoomID() domain.RoomID { return e.Room }
func (e ContentUpdated) Name() string          { return "contentUpdated" }

type EntryCreated struct {
	Room domain.RoomID `json:"-"`
	Path string        `json:"filePath"`
	Node *domain.Node  `json:"node"`
}

func (e EntryCreated) RoomID() domain.RoomID { return e.Room }
func (e EntryCreated) Name() string          { return "entryCreated" }

type EntryDeleted struct {
	Room domain.RoomID `json:"-"`
	Path string        `json:"filePath"`
}

func (e EntryDeleted) RoomID() domain.RoomID { return e.Room }
func (e EntryDeleted) Name() string          { return "entryDeleted" }

type EntryRenamed struct {
	Room    domain.RoomID `json:"-"`
	OldPath string        `json:"oldPath"`
	NewPath string        `json:"newPath"`
}

func (e EntryRenamed) RoomID() domain.RoomID { return e.Room }
func (e EntryRenamed) Name() string          { return "entryRenamed" }

// CursorMoved relays another member's cursor position. Never stored.
type CursorMoved struct {
	Room     domain.RoomID         `json:"-"`
	MemberID string                `json:"memberId"`
	Position domain.CursorPosition `json:"position"`
}

func (e CursorMoved) RoomID() domain.RoomID { return e.Room }
func (e CursorMoved) Name() string          { return "cursorMoved" }

type ExecutionCompleted struct {
	Room   domain.RoomID          `json:"-"`
	Result domain.ExecutionResult `json:"result"`
}

func (e ExecutionCompleted) RoomID() domain.RoomID { return e.Room }
func (e ExecutionCompleted) Name() string          { return "executionCompleted" }

// ExecutionReplay carries the most recent cached result of a room to a
// late joiner.
type ExecutionReplay struct {
	Room   domain.RoomID          `json:"-"`
	Result domain.ExecutionResult `json:"result"`
}

func (e ExecutionReplay) RoomID() domain.RoomID { return e.Room }
func (e ExecutionReplay) Name() string          { return "executionReplay" }

type ErrorNotice struct {
	Room    domain.RoomID `json:"-"`
	Message string        `json:"message"`
}

func (e ErrorNotice) RoomID() domain.RoomID { return e.Room }
func (e ErrorNotice) Name() string          { return "errorNotice" }
