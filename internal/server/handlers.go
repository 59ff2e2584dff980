package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/storycut/storycut-api/internal/automation"
	"github.com/storycut/storycut-api/internal/project"
	"github.com/storycut/storycut-api/internal/render"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	renders    *render.Service
	automation automation.Client
	projects   *project.Store
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(renders *render.Service, auto automation.Client, projects *project.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		renders:    renders,
		automation: auto,
		projects:   projects,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateRender handles POST /render requests. The render runs
// synchronously; the response carries the published artifact URL.
func (h *Handlers) CreateRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shots := make([]render.ShotInput, len(req.Shots))
	for i, s := range req.Shots {
		shots[i] = render.ShotInput{
			ID:       s.ID,
			VideoURL: stringValue(s.Video),
			ImageURL: stringValue(s.Image),
		}
	}

	result, err := h.renders.Render(r.Context(), render.Request{
		Shots:        shots,
		ProjectLabel: req.ProjectName,
	})
	if err != nil {
		if errors.Is(err, render.ErrNoRenderableShots) {
			writeError(w, http.StatusBadRequest, "no shots with a video or image to render")
			return
		}
		h.logger.Error("render failed",
			slog.String("project", req.ProjectName),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("render completed",
		slog.String("job_id", result.JobID),
		slog.String("video_url", result.VideoURL),
	)

	writeJSON(w, http.StatusOK, RenderResponse{
		Status:   "success",
		VideoURL: result.VideoURL,
	})
}

// GetJob handles GET /jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	found, err := h.renders.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, render.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(found))
}

// ListJobs handles GET /jobs requests.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.renders.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	resp := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		resp[i] = toJobResponse(j)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Automation handles POST /automation requests by relaying the action to
// the configured workflow engine and returning its response untouched.
func (h *Handlers) Automation(w http.ResponseWriter, r *http.Request) {
	var req AutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.automation.Trigger(r.Context(), req.Action, req.Payload)
	if err != nil {
		h.logger.Error("automation trigger failed",
			slog.String("action", req.Action),
			slog.String("error", err.Error()),
		)
		switch {
		case errors.Is(err, automation.ErrActionRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, automation.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "automation engine is rate limiting requests")
		default:
			writeError(w, http.StatusBadGateway, "automation engine request failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.logger.Error("failed to relay automation response",
			slog.String("error", err.Error()),
		)
	}
}

func toJobResponse(j *render.Job) JobResponse {
	var completed *time.Time
	if !j.CompletedAt.IsZero() {
		t := j.CompletedAt
		completed = &t
	}
	return JobResponse{
		ID:          j.ID,
		Project:     j.ProjectLabel,
		Status:      string(j.GetStatus()),
		Shots:       j.ShotCount,
		VideoURL:    j.ArtifactURL,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		CompletedAt: completed,
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
