package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskquest/gamify"
	"taskquest/models"
	"taskquest/recurrence"
	"taskquest/store"
)

/*
handles routes:
- GET /tasks?assigned_to=&team_id=&status= - list tasks
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	f := store.Filter{
		AssignedTo: r.URL.Query().Get("assigned_to"),
		TeamID:     r.URL.Query().Get("team_id"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ParseTaskStatus(raw)
		if status == "" {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		f.Status = status
	}

	sendJSON(w, h.Engine.Tasks(f), http.StatusOK)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input struct {
		Title             string     `json:"title"`
		Details           string     `json:"details"`
		AssignedTo        string     `json:"assigned_to"`
		Score             int        `json:"score"`
		TeamID            *string    `json:"team_id"`
		Priority          string     `json:"priority"`
		Recurrence        string     `json:"recurrence"`
		RecurrenceEndDate *time.Time `json:"recurrence_end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	rule, ok := models.ParseRecurrenceRule(input.Recurrence)
	if !ok {
		sendError(w, "Invalid recurrence value", http.StatusBadRequest)
		return
	}
	priority, ok := models.ParseTaskPriority(input.Priority)
	if !ok {
		sendError(w, "Invalid priority value", http.StatusBadRequest)
		return
	}

	task, err := h.Engine.CreateTask(r.Context(), store.CreateInput{
		Title:             input.Title,
		Details:           input.Details,
		AssignedTo:        input.AssignedTo,
		Score:             input.Score,
		TeamID:            input.TeamID,
		Priority:          priority,
		Recurrence:        rule,
		RecurrenceEndDate: input.RecurrenceEndDate,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID.String())
	sendJSON(w, task, http.StatusCreated)
}

/*
routes:
- GET /tasks/{id}
- PATCH /tasks/{id} - content edits and reassignment
- POST /tasks/{id}/advance - state machine actions
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if rest == "" {
		sendError(w, "task id is required", http.StatusBadRequest)
		return
	}

	advance := false
	if idPart, found := strings.CutSuffix(rest, "/advance"); found {
		advance = true
		rest = idPart
	}

	taskID, err := uuid.Parse(rest)
	if err != nil {
		sendError(w, "task id must be a valid uuid", http.StatusBadRequest)
		return
	}

	if advance {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.advanceTask(w, r, taskID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTaskByID(w, r, taskID)
	case http.MethodPatch:
		h.updateTaskByID(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTaskByID(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	task, err := h.Engine.Task(taskID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sendJSON(w, task, http.StatusOK)
}

func (h *Handler) advanceTask(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	actor := userID(r.Context())
	if actor == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var input struct {
		Action  string `json:"action"`
		ActorID string `json:"actor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if input.ActorID != "" {
		actor = input.ActorID
	}

	task, err := h.Engine.AdvanceTask(r.Context(), taskID, gamify.Action(input.Action), actor)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sendJSON(w, task, http.StatusOK)
}

func (h *Handler) updateTaskByID(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var input struct {
		Title      *string `json:"title"`
		Details    *string `json:"details"`
		AssignedTo *string `json:"assigned_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if input.Title == nil && input.Details == nil && input.AssignedTo == nil {
		sendError(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	var (
		task *models.Task
		err  error
	)
	if input.Title != nil || input.Details != nil {
		task, err = h.Engine.UpdateContent(r.Context(), taskID, input.Title, input.Details)
		if err != nil {
			writeEngineError(w, err)
			return
		}
	}
	if input.AssignedTo != nil {
		task, err = h.Engine.Reassign(r.Context(), taskID, *input.AssignedTo)
		if err != nil {
			writeEngineError(w, err)
			return
		}
	}
	sendJSON(w, task, http.StatusOK)
}

func writeEngineError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	var terr *store.TransitionError
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		sendError(w, "Task not found", http.StatusNotFound)
	case errors.As(err, &verr):
		sendError(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, recurrence.ErrInvalidRule):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &terr):
		sendError(w, terr.Error(), http.StatusConflict)
	default:
		log.Printf("task operation failed: %v", err)
		sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}
