// Package httpapi is the REST surface: room lifecycle, language
// listing, code execution, and an operator stats endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"code-lab/domain"
	"code-lab/errors"
	"code-lab/lang"
	"code-lab/observability"
	"code-lab/runtime"
)

// Executor is the slice of ExecService this server needs.
type Executor interface {
	Execute(ctx context.Context, req domain.ExecutionRequest) (domain.ExecutionResult, error)
}

type Server struct {
	log      *slog.Logger
	rooms    *runtime.RoomRegistry
	executor Executor
	monitor  *observability.Monitor
	validate *validator.Validate
}

func NewServer(log *slog.Logger, rooms *runtime.RoomRegistry, executor Executor, monitor *observability.Monitor) *Server {
	return &Server{
		log:      log,
		rooms:    rooms,
		executor: executor,
		monitor:  monitor,
		validate: validator.New(),
	}
}

// Register attaches every API route onto the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("GET /api/languages", s.handleListLanguages)
	mux.HandleFunc("POST /api/execute", s.handleExecute)
	mux.HandleFunc("GET /api/stats", s.handleStats)
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, _ *http.Request) {
	room := s.rooms.Create()
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: string(room.ID)})
}

type roomResponse struct {
	Exists bool      `json:"exists"`
	Room   *roomBody `json:"room,omitempty"`
}

type roomBody struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"createdAt"`
	Members   []domain.Participant `json:"members"`
	Files     *domain.Node         `json:"files"`
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := s.rooms.Get(domain.RoomID(r.PathValue("id")))
	if !ok {
		writeJSON(w, http.StatusOK, roomResponse{Exists: false})
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{
		Exists: true,
		Room: &roomBody{
			ID:        string(room.ID),
			CreatedAt: room.CreatedAt,
			Members:   room.Members(),
			Files:     room.Snapshot(),
		},
	})
}

type languageBody struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"displayName"`
	FileExtensions []string `json:"fileExtensions"`
}

func (s *Server) handleListLanguages(w http.ResponseWriter, _ *http.Request) {
	languages := lo.Map(lang.All(), func(spec lang.Spec, _ int) languageBody {
		return languageBody{
			ID:             spec.ID,
			DisplayName:    spec.DisplayName,
			FileExtensions: spec.Extensions,
		}
	})
	writeJSON(w, http.StatusOK, languages)
}

type executeRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
	RoomID   string `json:"roomId" validate:"required"`
	Filename string `json:"filename"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.executor.Execute(r.Context(), domain.ExecutionRequest{
		Code:     req.Code,
		Language: req.Language,
		Filename: req.Filename,
		Room:     domain.RoomID(req.RoomID),
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("Execution failed unexpectedly", "room", req.RoomID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "execution failed"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
