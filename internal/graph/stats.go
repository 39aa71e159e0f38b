package graph

import "inkwell/lineage/internal/lineage"

// Stats summarizes the shape of a lineage forest
type Stats struct {
	TotalEvents      int `json:"total_events"`
	Roots            int `json:"roots"`
	Heads            int `json:"heads"`
	BranchPoints     int `json:"branch_points"`
	Components       int `json:"components"`
	LargestComponent int `json:"largest_component"`
	LongestChain     int `json:"longest_chain"`
	Orphans          int `json:"orphans"`
	Columns          int `json:"columns"`
}

// ComputeStats counts roots, heads, branch points and connected components
func ComputeStats(events []lineage.Event) *Stats {
	n := len(events)
	if n == 0 {
		return &Stats{}
	}

	idx := buildIndex(events)
	uf := NewUnionFind(n)
	stats := &Stats{TotalEvents: n}

	for i, e := range events {
		if e.ParentID == nil {
			stats.Roots++
		}
		if idx.orphan[i] {
			stats.Orphans++
		}
		switch kids := len(idx.children[i]); {
		case kids == 0:
			stats.Heads++
		case kids > 1:
			stats.BranchPoints++
		}
		if p := idx.parent[i]; p >= 0 {
			uf.Union(i, p)
		}
	}

	stats.Components = uf.Count()
	stats.LargestComponent = uf.Largest()
	stats.LongestChain = longestChain(idx)
	stats.Columns = ComputeLayout(events).MaxColumn + 1
	return stats
}

// longestChain returns the number of events on the deepest root-to-event
// path. Depths are resolved iteratively; a parent cycle ends the walk.
func longestChain(idx *eventIndex) int {
	n := len(idx.events)
	depth := make([]int, n) // 0 = unknown
	onPath := make([]bool, n)
	longest := 0
	var path []int

	for i := 0; i < n; i++ {
		cur := i
		for cur >= 0 && depth[cur] == 0 && !onPath[cur] {
			onPath[cur] = true
			path = append(path, cur)
			cur = idx.parent[cur]
		}
		base := 0
		if cur >= 0 && depth[cur] > 0 {
			base = depth[cur]
		}
		for k := len(path) - 1; k >= 0; k-- {
			base++
			depth[path[k]] = base
			onPath[path[k]] = false
		}
		path = path[:0]
		if depth[i] > longest {
			longest = depth[i]
		}
	}
	return longest
}
