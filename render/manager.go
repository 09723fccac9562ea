package render

import (
	"log"
	"sync"
)

// Manager owns the pending task queue and the dispatch loop that drains it.
// The queue is strictly FIFO with optional front insertion, and tasks execute
// one at a time: a task must finish before the next one is handed out. The
// worker thread count is parallelism within the running task, never across
// tasks. Purge-before-update relies on this; a chained update must not touch
// the tile directory while the purge still deletes it.
type Manager struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Task
	active   map[string]Task
	started  bool
	stopping bool
	threads  int
	wg       sync.WaitGroup
}

func NewManager() *Manager {
	m := &Manager{
		active: make(map[string]Task),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Submit adds a task to the queue. With front set the task is placed ahead of
// all other pending work.
func (m *Manager) Submit(t Task, front bool) {
	m.mu.Lock()
	if front {
		m.queue = append([]Task{t}, m.queue...)
	} else {
		m.queue = append(m.queue, t)
	}
	m.mu.Unlock()

	m.cond.Signal()
}

// Remove takes a task out of the pending queue. It returns false when the
// task is no longer pending, i.e. it is running, finished, or was removed
// already.
func (m *Manager) Remove(t Task) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, queued := range m.queue {
		if queued.ID() == t.ID() {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops every pending task in one step.
func (m *Manager) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
}

// Tasks returns a snapshot of all tracked tasks, running first, then pending
// in queue order.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]Task, 0, len(m.active)+len(m.queue))
	for _, t := range m.active {
		tasks = append(tasks, t)
	}
	tasks = append(tasks, m.queue...)
	return tasks
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *Manager) WorkerThreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threads
}

// Start launches the dispatch loop with the given worker thread count.
// Starting an already-running manager is a no-op.
func (m *Manager) Start(threads int) {
	if threads <= 0 {
		threads = 1
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.stopping = false
	m.threads = threads
	m.mu.Unlock()

	m.wg.Add(1)
	go m.dispatch()
}

// Stop halts the dispatch loop. A task already running finishes; pending
// tasks stay queued for the next Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.stopping = true
	m.mu.Unlock()

	m.cond.Broadcast()
	m.wg.Wait()

	m.mu.Lock()
	m.started = false
	m.stopping = false
	m.threads = 0
	m.mu.Unlock()
}

func (m *Manager) dispatch() {
	defer m.wg.Done()

	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.stopping {
			m.cond.Wait()
		}
		if m.stopping {
			m.mu.Unlock()
			return
		}

		t := m.queue[0]
		m.queue = m.queue[1:]
		m.active[t.ID()] = t
		threads := m.threads
		m.mu.Unlock()

		if err := t.Run(threads); err != nil {
			log.Printf("[render] task %s (%s) failed: %v", t.ID(), t.Description(), err)
		}

		m.mu.Lock()
		delete(m.active, t.ID())
		m.mu.Unlock()
	}
}
