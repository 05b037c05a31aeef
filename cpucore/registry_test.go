package cpucore

import (
	"fmt"
	"testing"
)

func newTestCPU(t *testing.T, name string) *CPU {
	t.Helper()
	return NewCPU(name, func() {})
}

func TestAddAssignsMaxPlusOne(t *testing.T) {
	c := NewCoordinator(NewBQL())

	a := newTestCPU(t, "a")
	b := newTestCPU(t, "b")
	d := newTestCPU(t, "d")

	c.Add(a)
	c.Add(b)
	c.Remove(a)
	c.Add(d)

	if a.Index() != UnassignedIndex {
		t.Fatalf("removed CPU should have UnassignedIndex, got %d", a.Index())
	}
	if b.Index() != 0 {
		t.Fatalf("first registered CPU should get index 0, got %d", b.Index())
	}
	// d must get 1, not the hole left by removing a - index assignment
	// is max+1 over live CPUs, never gap-filling.
	if d.Index() != 1 {
		t.Fatalf("index assignment must not fill gaps left by Remove, got %d", d.Index())
	}
}

func TestAddKeepsExplicitIndex(t *testing.T) {
	c := NewCoordinator(NewBQL())
	cpu := newTestCPU(t, "explicit")
	cpu.index.Store(7)

	c.Add(cpu)

	if cpu.Index() != 7 {
		t.Fatalf("explicit index should be preserved, got %d", cpu.Index())
	}
}

func TestMixedAutoThenExplicitPanics(t *testing.T) {
	c := NewCoordinator(NewBQL())
	c.Add(newTestCPU(t, "auto"))

	explicit := newTestCPU(t, "explicit")
	explicit.index.Store(5)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when mixing auto-assigned and explicit indices")
		}
	}()
	c.Add(explicit)
}

func TestMixedExplicitThenAutoPanics(t *testing.T) {
	c := NewCoordinator(NewBQL())
	explicit := newTestCPU(t, "explicit")
	explicit.index.Store(3)
	c.Add(explicit)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when mixing explicit and auto-assigned indices")
		}
	}()
	c.Add(newTestCPU(t, "auto"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := NewCoordinator(NewBQL())
	cpu := newTestCPU(t, "solo")
	c.Add(cpu)

	c.Remove(cpu)
	c.Remove(cpu) // must not panic or double-decrement anything

	if cpu.Index() != UnassignedIndex {
		t.Fatalf("expected UnassignedIndex after removal, got %d", cpu.Index())
	}
}

func TestDistinctLiveCPUsHaveDistinctIndices(t *testing.T) {
	c := NewCoordinator(NewBQL())
	seen := map[int32]bool{}
	for i := 0; i < 16; i++ {
		cpu := newTestCPU(t, fmt.Sprintf("cpu%d", i))
		c.Add(cpu)
		if seen[cpu.Index()] {
			t.Fatalf("index %d assigned twice", cpu.Index())
		}
		seen[cpu.Index()] = true
	}
}

func TestSnapshotNotMutatedByLaterAdd(t *testing.T) {
	c := NewCoordinator(NewBQL())
	c.Add(newTestCPU(t, "first"))

	snap := c.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 cpu in snapshot, got %d", len(snap))
	}

	c.Add(newTestCPU(t, "second"))

	if len(snap) != 1 {
		t.Fatalf("earlier snapshot must not observe later Add, got %d entries", len(snap))
	}
	if newLen := len(c.Snapshot()); newLen != 2 {
		t.Fatalf("fresh snapshot should see both CPUs, got %d", newLen)
	}
}

func TestInitResetsRegistryState(t *testing.T) {
	c := NewCoordinator(NewBQL())
	c.Add(newTestCPU(t, "a"))
	c.pending.Store(3) // simulate a barrier left mid-flight by a parent process

	c.Init()

	if len(c.Snapshot()) != 0 {
		t.Fatalf("Init must clear registry membership")
	}
	if c.pending.Load() != 0 {
		t.Fatalf("Init must reset pending to 0 regardless of prior state, got %d", c.pending.Load())
	}
}
