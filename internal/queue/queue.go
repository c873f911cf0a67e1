package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/convert"
	"github.com/google/uuid"
)

// Queue accepts conversion tasks and processes them on a fixed worker
// pool. Results stay in the store until the TTL evicts them.
type Queue struct {
	store  *Store
	tasks  chan *Task
	engine *convert.Engine
	log    *slog.Logger
	cfg    config.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the queue around a shared conversion engine.
func New(cfg config.Service, engine *convert.Engine, log *slog.Logger) *Queue {
	return &Queue{
		store:  NewStore(cfg.TaskTTL),
		tasks:  make(chan *Task, cfg.MaxQueueSize),
		engine: engine,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines and the store cleanup ticker.
func (q *Queue) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.cfg.WorkerCount; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case task, ok := <-q.tasks:
					if !ok {
						return
					}
					q.process(workerCtx, task)
				}
			}
		}()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(q.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				q.store.Cleanup()
			}
		}
	}()
}

// Stop shuts the workers down. In-flight conversions finish; queued
// tasks that were never picked up stay in the store as queued.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	close(q.tasks)
	q.wg.Wait()
}

// Submit registers a conversion task and enqueues it, returning the
// task ID used to poll status and fetch the result.
func (q *Queue) Submit(source, cfgYAML []byte, filename string) (string, error) {
	task := NewTask(uuid.NewString(), filename, source, cfgYAML)
	q.store.Put(task)
	select {
	case q.tasks <- task:
		return task.ID, nil
	default:
		task.Fail("queue full")
		return "", fmt.Errorf("task queue is full (%d)", q.cfg.MaxQueueSize)
	}
}

// Get returns a task by ID, nil when unknown or already evicted.
func (q *Queue) Get(id string) *Task {
	return q.store.Get(id)
}

// Depth returns how many tasks are waiting for a worker.
func (q *Queue) Depth() int {
	return len(q.tasks)
}

// Counts reports the stored tasks by status.
func (q *Queue) Counts() Counts {
	return q.store.Counts()
}

func (q *Queue) process(ctx context.Context, t *Task) {
	t.SetStatus(StatusProcessing)
	start := time.Now()

	out, err := q.convert(ctx, t)
	if err != nil {
		q.log.Warn("async conversion failed",
			"task_id", t.ID,
			"filename", t.Filename,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		t.Fail(err.Error())
		return
	}

	t.Complete(out)
	q.log.Info("async conversion completed",
		"task_id", t.ID,
		"filename", t.Filename,
		"size_bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (q *Queue) convert(ctx context.Context, t *Task) ([]byte, error) {
	overlay := t.ConfigYAML()
	if len(overlay) == 0 {
		return q.engine.Convert(ctx, t.Source())
	}
	cfg, err := config.ParseConversion(overlay)
	if err != nil {
		return nil, fmt.Errorf("task config: %w", err)
	}
	return q.engine.ConvertWith(ctx, t.Source(), cfg)
}
