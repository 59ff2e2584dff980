package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/storycut/storycut-api/internal/project"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The editor may be served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is one message from the editor over the project socket.
type wsRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// wsResponse is the envelope for every message the server sends back.
type wsResponse struct {
	Status  string `json:"status"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// ProjectSocket handles GET /ws requests. Each connection serves the
// project persistence actions used by the editor: new_project,
// list_projects, load_project and save_project.
func (h *Handlers) ProjectSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	h.logger.Info("websocket connected",
		slog.String("conn_id", connID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed",
					slog.String("conn_id", connID),
					slog.String("error", err.Error()),
				)
			}
			h.logger.Info("websocket disconnected", slog.String("conn_id", connID))
			return
		}

		resp := h.handleProjectAction(req)
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Warn("websocket write failed",
				slog.String("conn_id", connID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// projectNamePayload is the payload for actions addressing one project.
type projectNamePayload struct {
	ProjectName string `json:"projectName"`
}

// Response action names the editor dispatches on. Requests and responses
// use different vocabularies: the editor sends imperatives and matches on
// past-tense notifications.
const (
	actionProjectCreated = "new_project_created"
	actionProjectList    = "project_list"
	actionProjectLoaded  = "project_loaded"
	actionProjectSaved   = "project_saved"
)

func (h *Handlers) handleProjectAction(req wsRequest) wsResponse {
	switch req.Action {
	case "new_project":
		var p projectNamePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return wsError(req.Action, "invalid payload")
		}
		created, err := h.projects.Create(p.ProjectName)
		if err != nil {
			return wsError(req.Action, projectErrorMessage(err))
		}
		return wsOK(actionProjectCreated, created)

	case "list_projects":
		names, err := h.projects.List()
		if err != nil {
			return wsError(req.Action, projectErrorMessage(err))
		}
		return wsOK(actionProjectList, map[string]any{"projects": names})

	case "load_project":
		var p projectNamePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return wsError(req.Action, "invalid payload")
		}
		loaded, err := h.projects.Load(p.ProjectName)
		if err != nil {
			return wsError(req.Action, projectErrorMessage(err))
		}
		return wsOK(actionProjectLoaded, loaded)

	case "save_project":
		var doc project.Project
		if err := json.Unmarshal(req.Payload, &doc); err != nil {
			return wsError(req.Action, "invalid payload")
		}
		if err := h.projects.Save(&doc); err != nil {
			return wsError(req.Action, projectErrorMessage(err))
		}
		return wsOK(actionProjectSaved, map[string]any{"projectName": doc.ProjectName})

	default:
		return wsError(req.Action, "unknown action")
	}
}

// projectErrorMessage maps store errors to messages safe to show in the
// editor. Unexpected errors get a generic message.
func projectErrorMessage(err error) string {
	switch {
	case errors.Is(err, project.ErrNameRequired),
		errors.Is(err, project.ErrProjectExists),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrCorruptedProject):
		return err.Error()
	default:
		return "project operation failed"
	}
}

func wsOK(action string, payload any) wsResponse {
	return wsResponse{Status: "success", Action: action, Payload: payload}
}

func wsError(action, message string) wsResponse {
	return wsResponse{Status: "error", Action: action, Message: message}
}
