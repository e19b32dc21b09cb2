package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/noah-isme/sma-portal/internal/models"
)

// MemoryOverrideRepository keeps assignment overrides in process memory.
type MemoryOverrideRepository struct {
	mu    sync.RWMutex
	items map[string]models.LocalOverride
}

// NewMemoryOverrideRepository constructs an empty repository.
func NewMemoryOverrideRepository() *MemoryOverrideRepository {
	return &MemoryOverrideRepository{items: map[string]models.LocalOverride{}}
}

func (r *MemoryOverrideRepository) Get(_ context.Context, assignmentID string) (*models.LocalOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[assignmentID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *MemoryOverrideRepository) All(context.Context) (map[string]models.LocalOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.LocalOverride, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out, nil
}

func (r *MemoryOverrideRepository) Put(_ context.Context, o models.LocalOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[o.AssignmentID] = o
	return nil
}

func (r *MemoryOverrideRepository) Delete(_ context.Context, assignmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, assignmentID)
	return nil
}

// FileOverrideRepository keeps the override map as one JSON object on disk, keyed by
// assignment id. Writers in this process are serialised; other processes are not.
type FileOverrideRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileOverrideRepository constructs a repository backed by path.
func NewFileOverrideRepository(path string) *FileOverrideRepository {
	return &FileOverrideRepository{path: path}
}

func (r *FileOverrideRepository) Get(_ context.Context, assignmentID string) (*models.LocalOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.read()
	if err != nil {
		return nil, err
	}
	o, ok := items[assignmentID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *FileOverrideRepository) All(context.Context) (map[string]models.LocalOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileOverrideRepository) Put(_ context.Context, o models.LocalOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.read()
	if err != nil {
		return err
	}
	items[o.AssignmentID] = o
	return r.write(items)
}

func (r *FileOverrideRepository) Delete(_ context.Context, assignmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := items[assignmentID]; !ok {
		return nil
	}
	delete(items, assignmentID)
	return r.write(items)
}

func (r *FileOverrideRepository) read() (map[string]models.LocalOverride, error) {
	items := map[string]models.LocalOverride{}
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return items, nil
		}
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode overrides %s: %w", r.path, err)
	}
	if items == nil {
		items = map[string]models.LocalOverride{}
	}
	for id, o := range items {
		if o.AssignmentID == "" {
			o.AssignmentID = id
			items[id] = o
		}
	}
	return items, nil
}

func (r *FileOverrideRepository) write(items map[string]models.LocalOverride) error {
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}
	return writeFileAtomic(r.path, raw, 0o600)
}
