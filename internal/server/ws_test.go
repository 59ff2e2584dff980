package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storycut/storycut-api/internal/project"
)

func TestProjectActionNewProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	resp := h.handleProjectAction(wsRequest{
		Action:  "new_project",
		Payload: json.RawMessage(`{"projectName":"my film"}`),
	})

	assert.Equal(t, "success", resp.Status)
	// The editor dispatches on the notification name, not the request name
	assert.Equal(t, "new_project_created", resp.Action)

	created, ok := resp.Payload.(*project.Project)
	require.True(t, ok, "expected project document payload, got %T", resp.Payload)
	assert.Equal(t, "my_film", created.ProjectName)
}

func TestProjectActionDuplicateProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	payload := json.RawMessage(`{"projectName":"demo"}`)
	first := h.handleProjectAction(wsRequest{Action: "new_project", Payload: payload})
	require.Equal(t, "success", first.Status)

	resp := h.handleProjectAction(wsRequest{Action: "new_project", Payload: payload})
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestProjectActionListProjects(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	resp := h.handleProjectAction(wsRequest{Action: "list_projects"})
	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "project_list", resp.Action)

	listing, ok := resp.Payload.(map[string]any)
	require.True(t, ok, "expected map payload, got %T", resp.Payload)
	names, ok := listing["projects"].([]string)
	require.True(t, ok, "expected projects list, got %T", listing["projects"])
	assert.Empty(t, names)

	require.Equal(t, "success", h.handleProjectAction(wsRequest{
		Action:  "new_project",
		Payload: json.RawMessage(`{"projectName":"alpha"}`),
	}).Status)

	resp = h.handleProjectAction(wsRequest{Action: "list_projects"})
	require.Equal(t, "success", resp.Status)
	names = resp.Payload.(map[string]any)["projects"].([]string)
	assert.Equal(t, []string{"alpha"}, names)
}

func TestProjectActionLoadProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	require.Equal(t, "success", h.handleProjectAction(wsRequest{
		Action:  "new_project",
		Payload: json.RawMessage(`{"projectName":"alpha"}`),
	}).Status)

	resp := h.handleProjectAction(wsRequest{
		Action:  "load_project",
		Payload: json.RawMessage(`{"projectName":"alpha"}`),
	})
	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "project_loaded", resp.Action)

	loaded, ok := resp.Payload.(*project.Project)
	require.True(t, ok, "expected project document payload, got %T", resp.Payload)
	assert.Equal(t, "alpha", loaded.ProjectName)
}

func TestProjectActionLoadMissingProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	resp := h.handleProjectAction(wsRequest{
		Action:  "load_project",
		Payload: json.RawMessage(`{"projectName":"nope"}`),
	})
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestProjectActionSaveProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	require.Equal(t, "success", h.handleProjectAction(wsRequest{
		Action:  "new_project",
		Payload: json.RawMessage(`{"projectName":"alpha"}`),
	}).Status)

	resp := h.handleProjectAction(wsRequest{
		Action:  "save_project",
		Payload: json.RawMessage(`{"projectName":"alpha","idea":"a heist","shots":[{"id":"s1","script":"opening"}]}`),
	})
	require.Equal(t, "success", resp.Status, resp.Message)
	assert.Equal(t, "project_saved", resp.Action)
}

func TestProjectActionSaveMissingProject(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	resp := h.handleProjectAction(wsRequest{
		Action:  "save_project",
		Payload: json.RawMessage(`{"projectName":"ghost"}`),
	})
	assert.Equal(t, "error", resp.Status)
}

func TestProjectActionInvalidPayload(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	for _, action := range []string{"new_project", "load_project", "save_project"} {
		resp := h.handleProjectAction(wsRequest{
			Action:  action,
			Payload: json.RawMessage(`"not an object"`),
		})
		assert.Equal(t, "error", resp.Status, action)
		assert.Equal(t, "invalid payload", resp.Message, action)
	}
}

func TestProjectActionUnknown(t *testing.T) {
	h, _, _, _, _, _ := newTestHandlers(t)

	resp := h.handleProjectAction(wsRequest{Action: "reticulate_splines"})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "unknown action", resp.Message)
}
