package queue

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory task registry with TTL eviction.
type Store struct {
	mu    sync.Mutex
	tasks map[string]*Task
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		tasks: make(map[string]*Task),
		ttl:   ttl,
	}
}

func (s *Store) Put(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *Store) Get(id string) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

// Cleanup removes tasks whose last update is older than the TTL.
// Finished tasks stop updating, so their results expire TTL after
// completion.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, t := range s.tasks {
		if now.Sub(t.updatedAt()) > s.ttl {
			delete(s.tasks, id)
		}
	}
}

// Counts tallies stored tasks by status.
type Counts struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Counts reports how many stored tasks are in each state.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c Counts
	c.Total = len(s.tasks)
	for _, t := range s.tasks {
		switch t.status() {
		case StatusQueued:
			c.Queued++
		case StatusProcessing:
			c.Processing++
		case StatusCompleted:
			c.Completed++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}
