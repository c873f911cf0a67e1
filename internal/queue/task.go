// Package queue runs asynchronous conversions on a bounded worker pool
// and tracks task state in memory.
package queue

import (
	"sync"
	"time"
)

// TaskStatus represents the state of an async conversion task.
type TaskStatus string

const (
	StatusQueued     TaskStatus = "queued"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// Task tracks a single queued conversion.
type Task struct {
	mu sync.Mutex

	ID       string     `json:"task_id"`
	Filename string     `json:"filename"`
	Status   TaskStatus `json:"status"`
	Error    string     `json:"error,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Internal: not serialized.
	source  []byte // markdown input
	cfgYAML []byte // optional config overlay for this task
	result  []byte // generated DOCX
}

// NewTask builds a queued task holding its input.
func NewTask(id, filename string, source, cfgYAML []byte) *Task {
	now := time.Now()
	return &Task{
		ID:        id,
		Filename:  filename,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		source:    source,
		cfgYAML:   cfgYAML,
	}
}

// SetStatus updates task status atomically.
func (t *Task) SetStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = status
	t.UpdatedAt = time.Now()
}

// Complete stores the generated document and marks the task done.
func (t *Task) Complete(result []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.Status = StatusCompleted
	t.result = result
	t.UpdatedAt = now
	t.CompletedAt = now
}

// Fail marks the task failed with a reason.
func (t *Task) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.Status = StatusFailed
	t.Error = msg
	t.UpdatedAt = now
	t.CompletedAt = now
}

// Source returns the markdown input.
func (t *Task) Source() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.source
}

// ConfigYAML returns the task's config overlay, nil when absent.
func (t *Task) ConfigYAML() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfgYAML
}

// Result returns the generated DOCX, nil until completed.
func (t *Task) Result() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

func (t *Task) status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Status
}

func (t *Task) updatedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.UpdatedAt
}

// TaskSnapshot is a read-only, JSON-safe copy of task state.
type TaskSnapshot struct {
	ID          string     `json:"task_id"`
	Filename    string     `json:"filename"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	FileSize    int        `json:"file_size,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// Snapshot returns a JSON-safe copy of the task state.
func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskSnapshot{
		ID:          t.ID,
		Filename:    t.Filename,
		Status:      t.Status,
		Error:       t.Error,
		FileSize:    len(t.result),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
}
