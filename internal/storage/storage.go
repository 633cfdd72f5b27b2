package storage

import (
	"context"
	"fmt"
	"strings"

	"studyplan/internal/task"
)

// Repository loads and saves the whole task list. Load never fails on
// malformed content; it reports an empty list instead.
type Repository interface {
	Load(ctx context.Context) ([]task.Task, error)
	Save(ctx context.Context, tasks []task.Task) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Open picks a backend by name.
func Open(backend, dbPath, jsonPath string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return OpenSQLite(dbPath)
	case BackendJSON:
		return OpenJSONFile(jsonPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
