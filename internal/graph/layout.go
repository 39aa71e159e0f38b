package graph

import "inkwell/lineage/internal/lineage"

// Node is one event placed on the canvas
type Node struct {
	Event  lineage.Event `json:"event"`
	Column int           `json:"column"`
	YIndex int           `json:"yIndex"` // 0 = newest
}

// Link joins a node to its parent; renderers draw it straight when the
// columns match and elbowed otherwise
type Link struct {
	ParentID     string `json:"parentId"`
	ChildID      string `json:"childId"`
	ParentColumn int    `json:"parentColumn"`
	ParentY      int    `json:"parentY"`
	ChildColumn  int    `json:"childColumn"`
	ChildY       int    `json:"childY"`
}

// Layout is the renderable history graph
type Layout struct {
	Nodes     []Node   `json:"nodes"` // ascending yIndex
	Links     []Link   `json:"links"`
	MaxColumn int      `json:"maxColumn"`
	Orphans   []string `json:"orphans,omitempty"` // ids whose parentId matched no event
}

// ComputeLayout assigns a column and row to every event.
//
// Rows are reverse creation order. Columns are handed out in creation order:
// the first child of an event continues its parent's column, every later
// child and every root after the first takes a newly minted column. Because
// minting never revisits earlier events, adding a branch cannot move any
// column already drawn.
//
// Events whose parent is missing are laid out as roots and listed in
// Orphans. Events whose parent appears later in the sequence are settled
// from an explicit worklist once the parent is placed, and anything still
// unplaced after that (a parent cycle) is promoted to a root, so every node
// ends with a column and the call stack stays flat.
func ComputeLayout(events []lineage.Event) *Layout {
	n := len(events)
	if n == 0 {
		return &Layout{Nodes: []Node{}, Links: []Link{}}
	}

	idx := buildIndex(events)
	col := make([]int, n)
	for i := range col {
		col[i] = -1
	}

	nextColumn := 0
	roots := 0
	var work []int

	// settle places the children of already placed events. Only children
	// before limit are taken; later ones are reached by the main pass.
	settle := func(start, limit int) {
		work = append(work[:0], start)
		for len(work) > 0 {
			p := work[len(work)-1]
			work = work[:len(work)-1]
			placed := len(work)
			for k, c := range idx.children[p] {
				if c >= limit || col[c] >= 0 {
					continue
				}
				if k == 0 {
					col[c] = col[p]
				} else {
					nextColumn++
					col[c] = nextColumn
				}
				work = append(work, c)
			}
			// first child on top of the stack
			for a, b := placed, len(work)-1; a < b; a, b = a+1, b-1 {
				work[a], work[b] = work[b], work[a]
			}
		}
	}

	placeRoot := func(i int) {
		if roots > 0 {
			nextColumn++
			col[i] = nextColumn
		} else {
			col[i] = 0
		}
		roots++
	}

	for i := 0; i < n; i++ {
		if col[i] >= 0 {
			continue
		}
		if idx.isRoot(i) {
			placeRoot(i)
		} else {
			p := idx.parent[i]
			if col[p] < 0 {
				continue // parent comes later; settled from the worklist
			}
			if idx.children[p][0] == i {
				col[i] = col[p]
			} else {
				nextColumn++
				col[i] = nextColumn
			}
		}
		settle(i, i)
	}

	for i := 0; i < n; i++ {
		if col[i] < 0 {
			placeRoot(i)
			settle(i, n)
		}
	}

	layout := &Layout{
		Nodes:     make([]Node, n),
		Links:     make([]Link, 0, n),
		MaxColumn: nextColumn,
		Orphans:   idx.orphanIDs(),
	}
	yIndex := func(i int) int { return n - 1 - i }

	for i := 0; i < n; i++ {
		layout.Nodes[yIndex(i)] = Node{Event: events[i], Column: col[i], YIndex: yIndex(i)}
	}
	for i := 0; i < n; i++ {
		p := idx.parent[i]
		if p < 0 {
			continue
		}
		layout.Links = append(layout.Links, Link{
			ParentID:     events[p].ID,
			ChildID:      events[i].ID,
			ParentColumn: col[p],
			ParentY:      yIndex(p),
			ChildColumn:  col[i],
			ChildY:       yIndex(i),
		})
	}
	return layout
}

// Column returns the column of the node with the given id, or -1
func (l *Layout) Column(id string) int {
	for _, n := range l.Nodes {
		if n.Event.ID == id {
			return n.Column
		}
	}
	return -1
}
