package selection

import (
	"testing"

	"github.com/google/uuid"
)

func snap(id, name string) TestSnapshot {
	return TestSnapshot{ID: id, Name: name, Category: "Chemistry"}
}

func TestWorkingSetAddDeduplicates(t *testing.T) {
	var ws WorkingSet

	if !ws.Add(snap("t1", "Glucose")) {
		t.Error("first add should change the set")
	}
	if ws.Add(snap("t1", "Glucose")) {
		t.Error("adding the same test twice should be a no-op")
	}
	if ws.Len() != 1 {
		t.Errorf("len = %d, want 1", ws.Len())
	}
}

func TestWorkingSetInsertionOrder(t *testing.T) {
	var ws WorkingSet
	ws.Add(snap("t2", "Creatinine"))
	ws.Add(snap("t1", "Glucose"))
	ws.Add(snap("t3", "ALT"))

	tests := ws.Tests()
	want := []string{"t2", "t1", "t3"}
	if len(tests) != len(want) {
		t.Fatalf("len = %d, want %d", len(tests), len(want))
	}
	for i, id := range want {
		if tests[i].ID != id {
			t.Errorf("tests[%d].ID = %q, want %q", i, tests[i].ID, id)
		}
	}
}

func TestWorkingSetRemove(t *testing.T) {
	var ws WorkingSet
	ws.Add(snap("t1", "Glucose"))
	ws.Add(snap("t2", "Creatinine"))

	if !ws.Remove("t1") {
		t.Error("removing a present test should report true")
	}
	if ws.Remove("t1") {
		t.Error("removing an absent test should report false")
	}
	if ws.Len() != 1 || ws.Tests()[0].ID != "t2" {
		t.Errorf("remaining set = %v", ws.Tests())
	}
}

func TestWorkingSetClear(t *testing.T) {
	var ws WorkingSet
	ws.Add(snap("t1", "Glucose"))
	ws.Clear()
	if ws.Len() != 0 {
		t.Errorf("len after clear = %d", ws.Len())
	}
}

func TestWorkingSetTestsReturnsCopy(t *testing.T) {
	var ws WorkingSet
	ws.Add(snap("t1", "Glucose"))

	out := ws.Tests()
	out[0].Name = "mutated"

	if ws.Tests()[0].Name != "Glucose" {
		t.Error("mutating the returned slice must not touch the set")
	}
}

func TestWorkspacePerPatientIsolation(t *testing.T) {
	ws := NewWorkspace()
	p1, p2 := uuid.New(), uuid.New()

	ws.Get(p1).Add(snap("t1", "Glucose"))

	if ws.Get(p2).Len() != 0 {
		t.Error("working sets must be per patient")
	}
	if ws.Get(p1) != ws.Get(p1) {
		t.Error("Get should return the same set for the same patient")
	}

	ws.Drop(p1)
	if ws.Get(p1).Len() != 0 {
		t.Error("Drop should discard the patient's set")
	}
}
