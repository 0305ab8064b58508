// Package tree builds the navigable hierarchy view over the flat group
// collection. The same builder serves UI rendering (depth-limited partial
// expansion) and static-page enumeration (true maximum depth).
package tree

import (
	"civicat/internal/catalog/models"
	dErrors "civicat/pkg/domain-errors"
)

// Node is one group with its expanded children.
type Node struct {
	Group    models.Group `json:"data"`
	Children []*Node      `json:"children"`
}

// Tree is the whole forest plus its true maximum depth. MaxDepth is computed
// over the unlimited tree even when the built view was depth-limited, so
// callers rendering a truncated view still know how deep the hierarchy goes.
type Tree struct {
	Roots    []*Node
	MaxDepth int
}

// Build partitions groups by parent and expands each root. A group with no
// parent, or whose parent does not refer to any known group, is a root.
//
// levelLimit, when positive, stops expansion once a node sits at that depth:
// the node itself is still present, with an empty children list. Zero means
// unlimited.
//
// A cyclic parent chain in the input is rejected with a cyclic-hierarchy
// error rather than looping.
func Build(groups []models.Group, levelLimit int) (*Tree, error) {
	if err := detectCycles(groups); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
	}

	byParent := map[string][]models.Group{}
	for _, g := range groups {
		parent := ""
		if g.HasParent() && known[*g.Parent] {
			parent = *g.Parent
		}
		byParent[parent] = append(byParent[parent], g)
	}

	var build func(parentID string, depth int) []*Node
	build = func(parentID string, depth int) []*Node {
		nodes := []*Node{}
		for _, g := range byParent[parentID] {
			children := []*Node{}
			if levelLimit <= 0 || depth < levelLimit {
				children = build(g.ID, depth+1)
			}
			nodes = append(nodes, &Node{Group: g, Children: children})
		}
		return nodes
	}

	var depthBelow func(parentID string, depth int) int
	depthBelow = func(parentID string, depth int) int {
		max := depth
		for _, g := range byParent[parentID] {
			if d := depthBelow(g.ID, depth+1); d > max {
				max = d
			}
		}
		return max
	}

	t := &Tree{Roots: build("", 1)}
	if len(byParent[""]) > 0 {
		t.MaxDepth = depthBelow("", 0)
	}
	return t, nil
}

// detectCycles walks every group's parent chain with a per-walk visited set.
// With single-parent records a cycle always detaches itself from the forest
// roots, silently hiding its members from the built view; fail fast instead.
func detectCycles(groups []models.Group) error {
	byID := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	for _, g := range groups {
		seen := map[string]bool{}
		current := g
		for current.HasParent() {
			if seen[current.ID] {
				return dErrors.Newf(dErrors.CodeCyclicHierarchy,
					"cyclic group hierarchy involving %s", current.ID)
			}
			seen[current.ID] = true
			parent, ok := byID[*current.Parent]
			if !ok {
				break
			}
			current = parent
		}
	}
	return nil
}
