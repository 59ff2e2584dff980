// Package project provides the file-backed project store. Each project is
// a directory holding a JSON document (<name>.aivc) with the full editor
// state and an assets/ folder for generated media.
package project

import (
	"regexp"
	"time"
)

// FileExt is the extension of the project document inside each project
// directory.
const FileExt = ".aivc"

var nameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName converts a project name into a filesystem-safe token,
// preventing directory traversal through user-supplied names.
func SanitizeName(name string) string {
	return nameSanitizer.ReplaceAllString(name, "_")
}

// Shot is one timeline entry as stored in the project document. Only the
// fields the backend reads are modeled; the editor owns the semantics.
type Shot struct {
	// ID is the shot's identifier within the project.
	ID string `json:"id"`
	// Script is the narration/script text for the shot.
	Script string `json:"script,omitempty"`
	// Image is the URL of the generated still, if any.
	Image string `json:"image,omitempty"`
	// Video is the URL of the generated clip, if any.
	Video string `json:"video,omitempty"`
	// SoundEffect is the URL of the generated sound effect, if any.
	SoundEffect string `json:"soundEffect,omitempty"`
}

// Project is the persisted editor document.
type Project struct {
	// ProjectName is the sanitized project name; it doubles as the
	// directory and document name.
	ProjectName string `json:"projectName"`
	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"createdAt"`
	// Idea is the user's one-line video idea.
	Idea string `json:"idea"`
	// ArtDirection holds the editor's free-form art direction fields.
	ArtDirection map[string]any `json:"artDirection"`
	// Shots is the ordered timeline.
	Shots []Shot `json:"shots"`
}

// NewProject creates an empty project document for the given (already
// sanitized) name.
func NewProject(name string) *Project {
	return &Project{
		ProjectName:  name,
		CreatedAt:    time.Now().UTC(),
		ArtDirection: map[string]any{},
		Shots:        []Shot{},
	}
}
