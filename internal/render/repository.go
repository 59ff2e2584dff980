package render

import (
	"context"
	"errors"
)

// ErrJobNotFound is returned when a render job cannot be found by ID.
var ErrJobNotFound = errors.New("render job not found")

// Repository defines the interface for render job persistence.
type Repository interface {
	// Save persists a job. If the job already exists, it is updated.
	Save(ctx context.Context, job *Job) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// List returns all jobs.
	List(ctx context.Context) ([]*Job, error)
}

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)
