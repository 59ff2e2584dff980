package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Static errors for project store operations.
var (
	// ErrNameRequired is returned when a project name is empty.
	ErrNameRequired = errors.New("project: name is required")
	// ErrProjectExists is returned when creating a project that already exists.
	ErrProjectExists = errors.New("project: already exists")
	// ErrProjectNotFound is returned when a project directory or document is missing.
	ErrProjectNotFound = errors.New("project: not found")
	// ErrCorruptedProject is returned when a project document cannot be parsed.
	ErrCorruptedProject = errors.New("project: document is corrupted")
)

// Store persists projects as directories under a single root.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "projects"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create projects directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the projects root directory.
func (s *Store) Root() string {
	return s.root
}

// documentPath returns the path of a project's JSON document.
func (s *Store) documentPath(name string) string {
	return filepath.Join(s.root, name, name+FileExt)
}

// Create makes a new project directory with an assets folder and an
// initial document. The name is sanitized first; duplicates are rejected.
func (s *Store) Create(name string) (*Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	sanitized := SanitizeName(name)
	dir := filepath.Join(s.root, sanitized)

	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, sanitized)
	}

	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0750); err != nil {
		return nil, fmt.Errorf("create project directories: %w", err)
	}

	p := NewProject(sanitized)
	if err := s.write(p); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns the names of all projects, i.e. the directories under root.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Load reads a project document by name.
func (s *Store) Load(name string) (*Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	sanitized := SanitizeName(name)
	data, err := os.ReadFile(s.documentPath(sanitized)) // #nosec G304 - name is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, sanitized)
		}
		return nil, fmt.Errorf("read project document: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptedProject, sanitized, err)
	}

	return &p, nil
}

// Save rewrites a project's document. The project must already exist.
func (s *Store) Save(p *Project) error {
	if p == nil || p.ProjectName == "" {
		return ErrNameRequired
	}

	sanitized := SanitizeName(p.ProjectName)
	dir := filepath.Join(s.root, sanitized)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, sanitized)
		}
		return fmt.Errorf("stat project directory: %w", err)
	}

	p.ProjectName = sanitized
	return s.write(p)
}

// write marshals and persists the project document.
func (s *Store) write(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project document: %w", err)
	}
	if err := os.WriteFile(s.documentPath(p.ProjectName), data, 0640); err != nil {
		return fmt.Errorf("write project document: %w", err)
	}
	return nil
}
