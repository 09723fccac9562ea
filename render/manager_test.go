package render

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testTask records when it runs and optionally blocks until released.
type testTask struct {
	id         string
	name       string
	run        func()
	release    chan struct{}
	gotThreads int
}

func newTestTask(name string, run func()) *testTask {
	return &testTask{id: uuid.NewString(), name: name, run: run}
}

func (t *testTask) ID() string {
	return t.id
}

func (t *testTask) Description() string {
	return t.name
}

func (t *testTask) Run(threads int) error {
	t.gotThreads = threads
	if t.run != nil {
		t.run()
	}
	if t.release != nil {
		<-t.release
	}
	return nil
}

func waitEmpty(t *testing.T, m *Manager) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for len(m.Tasks()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for queue to drain")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerFIFO(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	order := []string{}
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	m.Submit(newTestTask("a", record("a")), false)
	m.Submit(newTestTask("b", record("b")), false)
	m.Submit(newTestTask("c", record("c")), false)

	m.Start(1)
	waitEmpty(t, m)
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("expected FIFO order a,b,c got %v", order)
	}
}

func TestManagerFrontInsertion(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	order := []string{}
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	m.Submit(newTestTask("update-1", record("update-1")), false)
	m.Submit(newTestTask("update-2", record("update-2")), false)
	m.Submit(newTestTask("purge", record("purge")), true)

	m.Start(1)
	waitEmpty(t, m)
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if order[0] != "purge" {
		t.Errorf("front-inserted task must run first, got %v", order)
	}
}

func TestManagerRunsTasksSerially(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	order := []string{}
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	started := make(chan struct{})
	purge := newTestTask("purge", func() {
		record("purge")
		close(started)
	})
	purge.release = make(chan struct{})
	update := newTestTask("update", func() { record("update") })

	m.Submit(update, false)
	m.Submit(purge, true)
	m.Start(2)
	<-started

	// the purge blocks; with two worker threads the update still must not
	// begin until it finishes
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if len(order) != 1 || order[0] != "purge" {
		t.Fatalf("no task may run alongside the purge, got %v", order)
	}
	mu.Unlock()

	close(purge.release)
	waitEmpty(t, m)
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[1] != "update" {
		t.Errorf("expected the update to run after the purge, got %v", order)
	}
	if update.gotThreads != 2 {
		t.Errorf("tasks should receive the worker thread count, got %d", update.gotThreads)
	}
}

func TestManagerRemove(t *testing.T) {
	m := NewManager()

	a := newTestTask("a", nil)
	b := newTestTask("b", nil)
	m.Submit(a, false)
	m.Submit(b, false)

	if !m.Remove(a) {
		t.Error("expected removal of queued task to succeed")
	}
	if m.Remove(a) {
		t.Error("expected second removal to fail")
	}
	if len(m.Tasks()) != 1 {
		t.Errorf("expected one remaining task, got %d", len(m.Tasks()))
	}
}

func TestManagerRemoveRunningTask(t *testing.T) {
	m := NewManager()

	started := make(chan struct{})
	task := newTestTask("slow", func() { close(started) })
	task.release = make(chan struct{})

	m.Submit(task, false)
	m.Start(1)
	<-started

	if m.Remove(task) {
		t.Error("a running task must not be removable")
	}

	close(task.release)
	waitEmpty(t, m)
	m.Stop()
}

func TestManagerRemoveAll(t *testing.T) {
	m := NewManager()
	for i := 0; i < 3; i++ {
		m.Submit(newTestTask("t", nil), false)
	}

	m.RemoveAll()
	if len(m.Tasks()) != 0 {
		t.Errorf("expected empty queue, got %d tasks", len(m.Tasks()))
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager()

	if m.IsRunning() {
		t.Error("new manager must not be running")
	}

	m.Start(3)
	if !m.IsRunning() {
		t.Error("manager should be running after Start")
	}
	if m.WorkerThreadCount() != 3 {
		t.Errorf("expected 3 workers, got %d", m.WorkerThreadCount())
	}

	// starting again is a no-op
	m.Start(7)
	if m.WorkerThreadCount() != 3 {
		t.Errorf("second Start must not resize the pool, got %d", m.WorkerThreadCount())
	}

	m.Stop()
	if m.IsRunning() {
		t.Error("manager should be stopped after Stop")
	}
	if m.WorkerThreadCount() != 0 {
		t.Errorf("expected 0 workers after stop, got %d", m.WorkerThreadCount())
	}
}

func TestManagerStopKeepsQueue(t *testing.T) {
	m := NewManager()

	started := make(chan struct{})
	blocker := newTestTask("blocker", func() { close(started) })
	blocker.release = make(chan struct{})

	m.Submit(blocker, false)
	m.Start(1)
	<-started

	m.Submit(newTestTask("pending", nil), false)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	// give Stop a moment to mark the pool as stopping before the running
	// task finishes
	time.Sleep(50 * time.Millisecond)
	close(blocker.release)
	<-done

	if len(m.Tasks()) != 1 {
		t.Errorf("pending tasks must survive Stop, got %d", len(m.Tasks()))
	}
}
