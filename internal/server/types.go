// Package server provides the HTTP surface of the StoryCut API: the
// render endpoint, render job records, the automation proxy, the project
// WebSocket, and static serving of published artifacts.
package server

import "time"

// ShotPayload is one timeline entry of a render request. Video and image
// are both optional; a shot with neither is skipped. When both are set,
// video wins.
type ShotPayload struct {
	// ID is an opaque identifier used in error messages and logs.
	ID string `json:"id"`
	// Video is the URL of a pre-rendered clip for this shot.
	Video *string `json:"video"`
	// Image is the URL of a still image for this shot.
	Image *string `json:"image"`
}

// RenderRequest is the HTTP request body for POST /render.
type RenderRequest struct {
	// Shots is the ordered timeline to render.
	Shots []ShotPayload `json:"shots" validate:"required,min=1,dive"`
	// ProjectName namespaces the output artifact.
	ProjectName string `json:"projectName" validate:"required"`
}

// RenderResponse is the HTTP response for a successful render.
type RenderResponse struct {
	// Status is always "success".
	Status string `json:"status"`
	// VideoURL is the artifact address, relative to the service origin.
	VideoURL string `json:"videoUrl"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Status is always "error".
	Status string `json:"status"`
	// Message is the human-readable error message.
	Message string `json:"message"`
}

// JobResponse is the HTTP representation of a render job record.
type JobResponse struct {
	// ID is the unique identifier for the render.
	ID string `json:"id"`
	// Project is the sanitized project label.
	Project string `json:"project"`
	// Status is the pipeline state.
	Status string `json:"status"`
	// Shots is the number of renderable shots in the request.
	Shots int `json:"shots"`
	// VideoURL is the artifact address once the render is done.
	VideoURL string `json:"videoUrl,omitempty"`
	// Error contains the failure message if the render aborted.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the render was accepted.
	CreatedAt time.Time `json:"createdAt"`
	// CompletedAt is when the render reached a terminal state.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AutomationRequest is the HTTP request body for the automation proxy.
type AutomationRequest struct {
	// Action is the workflow-engine action to trigger.
	Action string `json:"action" validate:"required"`
	// Payload is forwarded to the engine as-is.
	Payload map[string]any `json:"payload"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
