package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/parishworks/sexton/internal/queue"
	"github.com/parishworks/sexton/pkg/handlers"
	"github.com/parishworks/sexton/pkg/routes"
)

// Handler exposes the enqueue endpoints and the job status lookup.
type Handler struct {
	store  queue.Store
	logger *slog.Logger
}

// EnqueueRequest selects how a conversion runs. Exactly one of Task or
// Workflow must be true: Task queues only the begin step, Workflow queues
// the full begin-then-wait pipeline.
type EnqueueRequest struct {
	Task     bool       `json:"task,omitempty"`
	Workflow bool       `json:"workflow,omitempty"`
	Data     BeginInput `json:"data"`
}

// EnqueueResponse acknowledges an accepted job.
type EnqueueResponse struct {
	Message string    `json:"message"`
	JobID   uuid.UUID `json:"job_id"`
}

// NewHandler creates the workflow Handler.
func NewHandler(store queue.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "workflow"),
	}
}

// Routes returns the route group for the enqueue and job status endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/begin-single-page-conversion", Handler: h.BeginPageConversion},
			{Method: "POST", Pattern: "/begin-post-creation", Handler: h.BeginPostCreation},
			{Method: "GET", Pattern: "/jobs/{id}", Handler: h.JobStatus},
		},
	}
}

// BeginPageConversion enqueues a page conversion.
func (h *Handler) BeginPageConversion(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, TaskBeginPageConversion, KindConvertPage)
}

// BeginPostCreation enqueues a post creation from a video.
func (h *Handler) BeginPostCreation(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, TaskBeginPostCreation, KindCreatePostFromVideo)
}

// JobStatus returns the queue's view of a job.
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: invalid job id", ErrInvalidInput))
		return
	}

	job, err := h.store.Find(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, queue.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, taskKind, workflowKind string) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		return
	}

	if req.Task == req.Workflow {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrSelector), ErrSelector)
		return
	}
	if err := req.Data.Validate(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	kind := workflowKind
	if req.Task {
		kind = taskKind
	}

	job, err := h.store.Enqueue(r.Context(), kind, req.Data)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info(
		"job enqueued",
		"kind", kind,
		"job_id", job.ID,
		"subject_id", req.Data.SubjectID,
	)

	handlers.RespondJSON(w, http.StatusCreated, EnqueueResponse{
		Message: fmt.Sprintf("Job created. Job ID: %s, URL: %s", job.ID, req.Data.URL),
		JobID:   job.ID,
	})
}
