package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Runner drives the engine's named background tasks (scrape, refresh) on
// their own tickers and remembers how each one's last run went, so the
// status endpoint can report scheduler health next to scrape counts.
type Runner struct {
	mu    sync.Mutex
	tasks []*task
}

type task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error

	mu    sync.Mutex
	state TaskState
}

// TaskState is the last observed outcome of one scheduled task.
type TaskState struct {
	Interval  string `json:"interval"`
	Runs      int    `json:"runs"`
	LastRunAt string `json:"last_run_at,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func New() *Runner { return &Runner{} }

// Add registers a task. A nonpositive interval disables it, so operators
// can switch a task off from config without touching code.
func (r *Runner) Add(name string, interval time.Duration, fn func(ctx context.Context) error) {
	if interval <= 0 {
		log.Printf("[sched:%s] disabled", name)
		return
	}
	r.mu.Lock()
	r.tasks = append(r.tasks, &task{
		name:     name,
		interval: interval,
		fn:       fn,
		state:    TaskState{Interval: interval.String()},
	})
	r.mu.Unlock()
}

// Start launches every registered task until ctx is done. Each task fires
// once immediately, then on its ticker.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	tasks := append([]*task(nil), r.tasks...)
	r.mu.Unlock()

	for _, t := range tasks {
		go t.loop(ctx)
	}
}

// States snapshots every task's state, keyed by task name.
func (r *Runner) States() map[string]TaskState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]TaskState, len(r.tasks))
	for _, t := range r.tasks {
		t.mu.Lock()
		out[t.name] = t.state
		t.mu.Unlock()
	}
	return out
}

func (t *task) loop(ctx context.Context) {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	t.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.run(ctx)
		}
	}
}

func (t *task) run(ctx context.Context) {
	err := t.fn(ctx)

	t.mu.Lock()
	t.state.Runs++
	t.state.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		t.state.LastError = err.Error()
	} else {
		t.state.LastError = ""
	}
	t.mu.Unlock()

	if err != nil {
		log.Printf("[sched:%s] err=%v", t.name, err)
	}
}
