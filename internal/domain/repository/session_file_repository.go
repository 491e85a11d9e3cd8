package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type fileSessionRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionRepository persists sessions in a YAML file, for the CLI.
func NewFileSessionRepository(path string) SessionRepository {
	return &fileSessionRepository{path: path}
}

func (r *fileSessionRepository) load() (map[string]map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	data := map[string]map[string]string{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", r.path, err)
	}
	return data, nil
}

func (r *fileSessionRepository) save(data map[string]map[string]string) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func (r *fileSessionRepository) Get(ctx context.Context, sid, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return "", err
	}
	return data[sid][key], nil
}

func (r *fileSessionRepository) GetAll(ctx context.Context, sid string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for k, v := range data[sid] {
		out[k] = v
	}
	return out, nil
}

func (r *fileSessionRepository) Set(ctx context.Context, sid string, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	if data[sid] == nil {
		data[sid] = map[string]string{}
	}
	for k, v := range values {
		data[sid][k] = v
	}
	return r.save(data)
}

func (r *fileSessionRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(data[sid], k)
	}
	return r.save(data)
}

func (r *fileSessionRepository) Clear(ctx context.Context, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	delete(data, sid)
	return r.save(data)
}
