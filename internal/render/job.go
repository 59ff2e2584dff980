package render

import (
	"errors"
	"sync"
	"time"

	"github.com/storycut/storycut-api/internal/render/id"
)

// Status represents the current state of a render job.
type Status string

const (
	// StatusReceived indicates the request was accepted and validated.
	StatusReceived Status = "received"
	// StatusFetching indicates shot assets are being downloaded.
	StatusFetching Status = "fetching"
	// StatusNormalizing indicates shots are being converted to uniform clips.
	StatusNormalizing Status = "normalizing"
	// StatusConcatenating indicates the clips are being merged.
	StatusConcatenating Status = "concatenating"
	// StatusFinalizing indicates the output is being published to durable storage.
	StatusFinalizing Status = "finalizing"
	// StatusDone indicates the render finished and the artifact is available.
	StatusDone Status = "done"
	// StatusAborted indicates the render failed; no artifact was produced.
	StatusAborted Status = "aborted"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed. Aborted is
// reachable from every non-terminal state on first failure.
var validTransitions = map[Status][]Status{
	StatusReceived:      {StatusFetching, StatusAborted},
	StatusFetching:      {StatusNormalizing, StatusAborted},
	StatusNormalizing:   {StatusConcatenating, StatusAborted},
	StatusConcatenating: {StatusFinalizing, StatusAborted},
	StatusFinalizing:    {StatusDone, StatusAborted},
	StatusDone:          {},
	StatusAborted:       {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job records one render invocation: its state machine position, shot
// count, the published artifact URL, and timestamps.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this render.
	ID string
	// ProjectLabel is the sanitized project name the render belongs to.
	ProjectLabel string
	// Status is the current pipeline state.
	Status Status
	// ShotCount is the number of renderable shots in the request.
	ShotCount int
	// ArtifactURL is the durable artifact address once the render is done.
	ArtifactURL string
	// Error contains the failure message if the render aborted.
	Error string
	// CreatedAt is when the render was accepted.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the render reached a terminal state.
	CompletedAt time.Time
}

// NewJob creates a new Job with a generated ID in the received state.
func NewJob(projectLabel string, shotCount int) *Job {
	now := time.Now()
	return &Job{
		ID:           id.Generate(),
		ProjectLabel: projectLabel,
		Status:       StatusReceived,
		ShotCount:    shotCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	if status == StatusDone || status == StatusAborted {
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Complete transitions the job to done and records the artifact URL.
func (j *Job) Complete(artifactURL string) error {
	j.mu.Lock()
	j.ArtifactURL = artifactURL
	j.mu.Unlock()
	return j.TransitionTo(StatusDone)
}

// Abort transitions the job to aborted with an error message.
func (j *Job) Abort(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusAborted)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusDone || j.Status == StatusAborted
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:           j.ID,
		ProjectLabel: j.ProjectLabel,
		Status:       j.Status,
		ShotCount:    j.ShotCount,
		ArtifactURL:  j.ArtifactURL,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		CompletedAt:  j.CompletedAt,
	}
}
