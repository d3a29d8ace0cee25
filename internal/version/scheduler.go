package version

import (
	"sync"
	"time"
)

type taskState int

const (
	taskPending taskState = iota
	taskFired
	taskCancelled
)

// Task is a single-fire delayed call that can be cancelled until it starts.
type Task struct {
	mu    sync.Mutex
	timer *time.Timer
	state taskState
	done  chan struct{}
}

// Schedule runs fn once after delay on its own goroutine.
func Schedule(delay time.Duration, fn func()) *Task {
	t := &Task{done: make(chan struct{})}
	t.mu.Lock()
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.state != taskPending {
			t.mu.Unlock()
			return
		}
		t.state = taskFired
		t.mu.Unlock()

		defer close(t.done)
		fn()
	})
	t.mu.Unlock()
	return t
}

// Cancel stops the task if it has not started and reports whether it did.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	t.timer.Stop()
	close(t.done)
	return true
}

func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == taskPending
}

// Done is closed once the task has run to completion or was cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Debouncer keeps at most one pending task per key. Triggering a key again
// before its task fires replaces the task, so a burst of triggers runs fn
// once, delay after the last trigger.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	tasks map[string]*Task
}

const DefaultDebounce = 30 * time.Second

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, tasks: make(map[string]*Task)}
}

func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tasks[key]; ok {
		t.Cancel()
	}
	var task *Task
	task = Schedule(d.delay, func() {
		d.mu.Lock()
		if d.tasks[key] == task {
			delete(d.tasks, key)
		}
		d.mu.Unlock()
		fn()
	})
	d.tasks[key] = task
}

// Cancel drops the pending task of key and reports whether there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tasks[key]
	if !ok {
		return false
	}
	delete(d.tasks, key)
	return t.Cancel()
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tasks[key]
	return ok && t.Pending()
}

// Stop cancels every pending task.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.tasks {
		t.Cancel()
		delete(d.tasks, key)
	}
}
