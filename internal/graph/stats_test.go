package graph

import (
	"testing"

	"inkwell/lineage/internal/lineage"
)

func TestStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	if s.TotalEvents != 0 || s.Components != 0 || s.LongestChain != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}

func TestStats_BranchingForest(t *testing.T) {
	s := ComputeStats([]lineage.Event{
		ev("A", "", 1),
		ev("B", "A", 2),
		ev("C", "A", 3),
		ev("D", "B", 4),
		ev("R", "", 5),
		ev("O", "ghost", 6),
	})
	if s.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d", s.TotalEvents)
	}
	if s.Roots != 2 {
		t.Errorf("Roots = %d, want 2 (orphans are not roots)", s.Roots)
	}
	if s.Orphans != 1 {
		t.Errorf("Orphans = %d, want 1", s.Orphans)
	}
	if s.Heads != 4 { // C, D, R, O
		t.Errorf("Heads = %d, want 4", s.Heads)
	}
	if s.BranchPoints != 1 {
		t.Errorf("BranchPoints = %d, want 1", s.BranchPoints)
	}
	if s.Components != 3 {
		t.Errorf("Components = %d, want 3", s.Components)
	}
	if s.LargestComponent != 4 {
		t.Errorf("LargestComponent = %d, want 4", s.LargestComponent)
	}
	if s.LongestChain != 3 {
		t.Errorf("LongestChain = %d, want 3", s.LongestChain)
	}
	if s.Columns != 4 {
		t.Errorf("Columns = %d, want 4", s.Columns)
	}
}

func TestStats_CycleTerminates(t *testing.T) {
	s := ComputeStats([]lineage.Event{ev("X", "Y", 1), ev("Y", "X", 2)})
	if s.Components != 1 {
		t.Errorf("Components = %d, want 1", s.Components)
	}
	if s.LongestChain != 2 {
		t.Errorf("LongestChain = %d, want 2", s.LongestChain)
	}
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)
	if !uf.Union(0, 1) {
		t.Error("0 and 1 should start separate")
	}
	uf.Union(1, 2)
	if uf.Union(0, 2) {
		t.Error("0 and 2 should already be joined")
	}
	if uf.Count() != 3 {
		t.Errorf("Count = %d, want 3", uf.Count())
	}
	if uf.Largest() != 3 {
		t.Errorf("Largest = %d, want 3", uf.Largest())
	}
	if uf.Find(2) != uf.Find(0) {
		t.Error("Find should agree inside a component")
	}
}
