package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/record"
)

// FileStore keeps every owner's data in one JSON document on disk. It
// implements both TaskRepo and SegmentRepo. Writes go to a temp file that
// is renamed over the original.
type FileStore struct {
	mu     sync.Mutex
	path   string
	doc    *fileDoc
	loaded bool
}

type fileDoc struct {
	Owners map[string]*ownerDoc `json:"owners"`
}

type ownerDoc struct {
	SegmentsInitialized bool          `json:"segmentsInitialized"`
	Segments            []string      `json:"segments"`
	Tasks               []record.Task `json:"tasks"`
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}

	o := s.doc.Owners[ownerID]
	tasks := []*domain.Task{}
	if o == nil {
		return tasks, nil
	}
	for _, r := range o.Tasks {
		t, err := r.ToTask()
		if err != nil {
			return nil, fmt.Errorf("decoding stored task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *FileStore) Upsert(ctx context.Context, ownerID string, t *domain.Task) error {
	return s.update(func(o *ownerDoc) {
		r := record.FromTask(t)
		i := slices.IndexFunc(o.Tasks, func(x record.Task) bool { return x.ID == t.ID })
		if i < 0 {
			o.Tasks = append(o.Tasks, r)
			return
		}
		o.Tasks[i] = r
	}, ownerID)
}

func (s *FileStore) Delete(ctx context.Context, ownerID, id string) error {
	return s.update(func(o *ownerDoc) {
		o.Tasks = slices.DeleteFunc(o.Tasks, func(x record.Task) bool { return x.ID == id })
	}, ownerID)
}

func (s *FileStore) Reorder(ctx context.Context, ownerID string, ids []string) error {
	return s.update(func(o *ownerDoc) {
		byID := make(map[string]record.Task, len(o.Tasks))
		stored := make([]string, 0, len(o.Tasks))
		for _, r := range o.Tasks {
			byID[r.ID] = r
			stored = append(stored, r.ID)
		}
		reordered := make([]record.Task, 0, len(o.Tasks))
		for _, id := range mergeOrder(ids, stored) {
			reordered = append(reordered, byID[id])
		}
		o.Tasks = reordered
	}, ownerID)
}

func (s *FileStore) List(ctx context.Context, ownerID string) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, false, err
	}
	o := s.doc.Owners[ownerID]
	if o == nil || !o.SegmentsInitialized {
		return []string{}, false, nil
	}
	names := slices.Clone(o.Segments)
	if names == nil {
		names = []string{}
	}
	return names, true, nil
}

func (s *FileStore) Replace(ctx context.Context, ownerID string, names []string) error {
	return s.update(func(o *ownerDoc) {
		o.SegmentsInitialized = true
		o.Segments = slices.Clone(names)
	}, ownerID)
}

// update applies fn to the owner's document and writes the file. The
// in-memory copy is only replaced once the write succeeds.
func (s *FileStore) update(fn func(o *ownerDoc), ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}

	next := s.doc.clone()
	o := next.Owners[ownerID]
	if o == nil {
		o = &ownerDoc{Segments: []string{}, Tasks: []record.Task{}}
		next.Owners[ownerID] = o
	}
	fn(o)

	if err := s.saveLocked(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	doc := &fileDoc{Owners: map[string]*ownerDoc{}}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading %s: %w", s.path, err)
	default:
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parsing %s: %w", s.path, err)
		}
		if doc.Owners == nil {
			doc.Owners = map[string]*ownerDoc{}
		}
	}
	s.doc = doc
	s.loaded = true
	return nil
}

func (s *FileStore) saveLocked(doc *fileDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// clone copies the owner map and each owner's slices so a failed write
// leaves the loaded document untouched. Task records are values; their
// nested SubTasks slices are shared but never mutated in place.
func (d *fileDoc) clone() *fileDoc {
	out := &fileDoc{Owners: make(map[string]*ownerDoc, len(d.Owners))}
	for id, o := range d.Owners {
		out.Owners[id] = &ownerDoc{
			SegmentsInitialized: o.SegmentsInitialized,
			Segments:            slices.Clone(o.Segments),
			Tasks:               slices.Clone(o.Tasks),
		}
	}
	return out
}
