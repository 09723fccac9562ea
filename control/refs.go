package control

import (
	"strings"
	"sync"

	"github.com/b1naryth1ef/atlas/render"
)

// Manager is the externally-owned task queue and worker pool the control
// plane schedules against.
type Manager interface {
	Submit(t render.Task, front bool)
	Remove(t render.Task) bool
	RemoveAll()
	Tasks() []render.Task
	IsRunning() bool
	Start(threads int)
	Stop()
	WorkerThreadCount() int
}

// refMinLength is the shortest reference handed out; references grow past it
// only to break a collision with another live task.
const refMinLength = 8

// RefRegistry maintains short human-typed references for live render tasks so
// operators can target them for cancellation. A reference binds to exactly
// one task for that task's whole lifetime; it is never re-bound while the
// task is still tracked.
type RefRegistry struct {
	mu      sync.RWMutex
	manager Manager
	refs    map[string]render.Task
	byID    map[string]string
}

func NewRefRegistry(manager Manager) *RefRegistry {
	return &RefRegistry{
		manager: manager,
		refs:    make(map[string]render.Task),
		byID:    make(map[string]string),
	}
}

// RefFor returns the stable reference for a task, assigning one on first
// sight. References are lowercase hex prefixes of the task id.
func (r *RefRegistry) RefFor(t render.Task) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assignLocked(t)
}

func (r *RefRegistry) assignLocked(t render.Task) string {
	if ref, ok := r.byID[t.ID()]; ok {
		return ref
	}

	compact := strings.ReplaceAll(t.ID(), "-", "")
	ref := compact
	for n := refMinLength; n <= len(compact); n++ {
		if _, taken := r.refs[compact[:n]]; !taken {
			ref = compact[:n]
			break
		}
	}

	r.refs[ref] = t
	r.byID[t.ID()] = ref
	return ref
}

// Resolve looks up the live task for a reference.
func (r *RefRegistry) Resolve(ref string) (render.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.refs[strings.ToLower(ref)]
	return t, ok
}

// ForceRefresh synchronizes the registry with the manager's current task set:
// references of tasks that reached a terminal state out-of-band stop
// resolving, tasks submitted elsewhere get references. Concurrent readers see
// either the old or the new snapshot, never a mix.
func (r *RefRegistry) ForceRefresh() {
	live := make(map[string]render.Task)
	for _, t := range r.manager.Tasks() {
		live[t.ID()] = t
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	refs := make(map[string]render.Task, len(live))
	byID := make(map[string]string, len(live))
	for ref, t := range r.refs {
		if _, ok := live[t.ID()]; ok {
			refs[ref] = t
			byID[t.ID()] = ref
		}
	}
	r.refs = refs
	r.byID = byID

	for _, t := range live {
		r.assignLocked(t)
	}
}
