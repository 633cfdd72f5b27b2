package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"studyplan/internal/task"
)

// JSONFile keeps the task list as a single compact JSON array.
type JSONFile struct {
	path string
}

func OpenJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("json path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	return &JSONFile{path: path}, nil
}

func (f *JSONFile) Path() string {
	return f.path
}

// Load returns an empty list when the file is missing or unreadable JSON.
func (f *JSONFile) Load(ctx context.Context) ([]task.Task, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, err
	}
	return task.DecodeStored(data), nil
}

func (f *JSONFile) Save(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tasks-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *JSONFile) Close() error {
	return nil
}
