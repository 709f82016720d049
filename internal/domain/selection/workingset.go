package selection

import (
	"sync"

	"github.com/google/uuid"
)

// WorkingSet is the transient, unsaved set of tests being assembled for one
// patient: ordered by insertion, deduplicated by test ID.
type WorkingSet struct {
	mu    sync.Mutex
	tests []TestSnapshot
}

// Add appends t unless a test with the same ID is already present. It reports
// whether the set changed.
func (w *WorkingSet) Add(t TestSnapshot) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.tests {
		if existing.ID == t.ID {
			return false
		}
	}
	w.tests = append(w.tests, t)
	return true
}

// Remove deletes the test with the given ID, reporting whether it was present.
func (w *WorkingSet) Remove(testID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.tests {
		if existing.ID == testID {
			w.tests = append(w.tests[:i], w.tests[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the set.
func (w *WorkingSet) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tests = nil
}

// Len returns the number of tests in the set.
func (w *WorkingSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tests)
}

// Tests returns a copy of the set in insertion order. Callers own the slice;
// mutating it never touches the working set.
func (w *WorkingSet) Tests() []TestSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]TestSnapshot, len(w.tests))
	copy(out, w.tests)
	return out
}

// Workspace holds the per-patient working sets for the running server.
// Sets live in memory only; nothing is persisted until Save.
type Workspace struct {
	mu   sync.Mutex
	sets map[uuid.UUID]*WorkingSet
}

func NewWorkspace() *Workspace {
	return &Workspace{sets: make(map[uuid.UUID]*WorkingSet)}
}

// Get returns the working set for a patient, creating it on first use.
func (ws *Workspace) Get(patientID uuid.UUID) *WorkingSet {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	set, ok := ws.sets[patientID]
	if !ok {
		set = &WorkingSet{}
		ws.sets[patientID] = set
	}
	return set
}

// Drop discards a patient's working set entirely.
func (ws *Workspace) Drop(patientID uuid.UUID) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.sets, patientID)
}
