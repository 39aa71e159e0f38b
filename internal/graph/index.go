package graph

import "inkwell/lineage/internal/lineage"

// eventIndex is the arena view of an event sequence: positions instead of
// ids, with the parent/children relations resolved once.
type eventIndex struct {
	events   []lineage.Event
	pos      map[string]int // id -> first position carrying it
	parent   []int          // position of parent, -1 for roots and orphans
	children [][]int        // creation order
	orphan   []bool         // parentId set but not resolvable
}

func buildIndex(events []lineage.Event) *eventIndex {
	n := len(events)
	idx := &eventIndex{
		events:   events,
		pos:      make(map[string]int, n),
		parent:   make([]int, n),
		children: make([][]int, n),
		orphan:   make([]bool, n),
	}
	for i, e := range events {
		if _, dup := idx.pos[e.ID]; !dup {
			idx.pos[e.ID] = i
		}
	}
	for i, e := range events {
		idx.parent[i] = -1
		if e.ParentID == nil {
			continue
		}
		p, ok := idx.pos[*e.ParentID]
		if !ok || p == i {
			idx.orphan[i] = true
			continue
		}
		idx.parent[i] = p
		idx.children[p] = append(idx.children[p], i)
	}
	return idx
}

// isRoot reports whether position i starts a component for layout purposes.
func (idx *eventIndex) isRoot(i int) bool {
	return idx.parent[i] < 0
}

func (idx *eventIndex) orphanIDs() []string {
	var ids []string
	for i, o := range idx.orphan {
		if o {
			ids = append(ids, idx.events[i].ID)
		}
	}
	return ids
}
