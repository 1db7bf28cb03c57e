package octree

import "sort"

// Leaf is the part of a leaf node the streamer needs.
type Leaf struct {
	Center     Coord
	SideLength int
}

// LeafSet is the frontier of the tree keyed by centre. Centres are unique
// among the nodes of one tree.
type LeafSet map[Coord]Leaf

// LeafNodes collects the current leaves.
func (t *Tree) LeafNodes() LeafSet {
	set := make(LeafSet)
	collect(t.root, set)
	return set
}

func collect(n *Node, set LeafSet) {
	if n.IsLeaf() {
		set[n.Center] = Leaf{Center: n.Center, SideLength: n.SideLength}
		return
	}
	for _, c := range n.children {
		collect(c, set)
	}
}

// Change is the difference between two leaf sets.
type Change struct {
	Added   []Leaf // only in next
	Removed []Leaf // only in prev
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Diff compares two leaf sets. A leaf is matched on centre and side, so a
// centre carrying a different side in next shows up as removed and added.
// Within one tree that never happens.
func Diff(prev, next LeafSet) Change {
	var ch Change
	for k, l := range next {
		if old, ok := prev[k]; !ok || old != l {
			ch.Added = append(ch.Added, l)
		}
	}
	for k, l := range prev {
		if cur, ok := next[k]; !ok || cur != l {
			ch.Removed = append(ch.Removed, l)
		}
	}
	sortLeaves(ch.Added)
	sortLeaves(ch.Removed)
	return ch
}

// sortLeaves orders small leaves first, then by centre, so diffs replay the
// same way every run.
func sortLeaves(ls []Leaf) {
	sort.Slice(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		if a.SideLength != b.SideLength {
			return a.SideLength < b.SideLength
		}
		for k := 0; k < 3; k++ {
			if a.Center[k] != b.Center[k] {
				return a.Center[k] < b.Center[k]
			}
		}
		return false
	})
}
