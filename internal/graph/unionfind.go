package graph

// UnionFind implements union-find over dense positions with path compression
// and union by rank
type UnionFind struct {
	parent []int
	rank   []int
	size   []int
}

// NewUnionFind creates a UnionFind of n singleton components
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the root of the component containing i
func (uf *UnionFind) Find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		next := uf.parent[i]
		uf.parent[i] = root
		i = next
	}
	return root
}

// Union merges the components containing a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b int) bool {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return false
	}

	switch {
	case uf.rank[rootA] < uf.rank[rootB]:
		uf.parent[rootA] = rootB
		uf.size[rootB] += uf.size[rootA]
	case uf.rank[rootA] > uf.rank[rootB]:
		uf.parent[rootB] = rootA
		uf.size[rootA] += uf.size[rootB]
	default:
		uf.parent[rootB] = rootA
		uf.size[rootA] += uf.size[rootB]
		uf.rank[rootA]++
	}
	return true
}

// Count returns the number of distinct components
func (uf *UnionFind) Count() int {
	count := 0
	for i := range uf.parent {
		if uf.Find(i) == i {
			count++
		}
	}
	return count
}

// Largest returns the size of the biggest component, 0 when empty
func (uf *UnionFind) Largest() int {
	largest := 0
	for i := range uf.parent {
		if uf.Find(i) == i && uf.size[i] > largest {
			largest = uf.size[i]
		}
	}
	return largest
}
