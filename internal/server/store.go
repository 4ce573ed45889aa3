package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flamechart/pkg/errors"
	"github.com/matzehuels/flamechart/pkg/flamechart"
	"github.com/matzehuels/flamechart/pkg/pipeline"
)

// entry is one uploaded profile. Charts are laid out lazily per layout key.
type entry struct {
	ID       string
	Name     string
	Loaded   *pipeline.Loaded
	Uploaded time.Time

	mu     sync.Mutex
	charts map[string]*flamechart.Flamechart
}

// chart returns the layout for opts, computing it on first use.
func (e *entry) chart(opts pipeline.Options, layout func() (*flamechart.Flamechart, error)) (*flamechart.Flamechart, error) {
	key := opts.Kind + "\x00" + opts.RootFilter
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.charts[key]; ok {
		return c, nil
	}
	c, err := layout()
	if err != nil {
		return nil, err
	}
	e.charts[key] = c
	return c, nil
}

// store holds uploaded profiles in memory.
type store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newStore() *store {
	return &store{entries: make(map[string]*entry)}
}

func (s *store) add(name string, loaded *pipeline.Loaded) *entry {
	e := &entry{
		ID:       uuid.NewString(),
		Name:     name,
		Loaded:   loaded,
		Uploaded: time.Now().UTC(),
		charts:   make(map[string]*flamechart.Flamechart),
	}
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e
}

func (s *store) get(id string) (*entry, error) {
	if err := errors.ValidateProfileID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeProfileNotFound, "profile %s not found", id)
	}
	return e, nil
}

func (s *store) remove(id string) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// list returns entries oldest first.
func (s *store) list() []*entry {
	s.mu.RLock()
	out := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Uploaded.Equal(out[j].Uploaded) {
			return out[i].ID < out[j].ID
		}
		return out[i].Uploaded.Before(out[j].Uploaded)
	})
	return out
}
