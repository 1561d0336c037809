package syllabus

import "sort"

// Materialize orders the nodes of a single chapter depth-first: roots by sequence number,
// then each node's children by sequence number, recursively. This is the same as sorting
// every node by its SortPath.
//
// Nodes whose parent does not resolve, and everything below them, are left out of
// Tree.Nodes and listed in Tree.Excluded. Siblings sharing a sequence number are ordered
// by id and reported once per group in Tree.Warnings.
func Materialize(chapterID string, nodes []Node) Tree {
	tree := Tree{ChapterID: chapterID}
	if len(nodes) == 0 {
		return tree
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	roots := make([]Node, 0)
	children := make(map[string][]Node, len(nodes))
	for _, n := range nodes {
		switch {
		case n.IsRoot():
			roots = append(roots, n)
		case known[n.parentKey()] && n.parentKey() != n.ID:
			children[n.parentKey()] = append(children[n.parentKey()], n)
		default:
			tree.Orphans = append(tree.Orphans, n)
		}
	}

	tree.Nodes = make([]TreeNode, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))

	var walk func(siblings []Node, parentPath SortPath, depth int)
	walk = func(siblings []Node, parentPath SortPath, depth int) {
		tree.Warnings = append(tree.Warnings, sortSiblings(siblings)...)
		for _, n := range siblings {
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true

			path := make(SortPath, len(parentPath), len(parentPath)+1)
			copy(path, parentPath)
			path = append(path, n.SequenceNumber)

			tree.Nodes = append(tree.Nodes, TreeNode{Node: n, Depth: depth, SortPath: path})
			walk(children[n.ID], path, depth+1)
		}
	}
	walk(roots, nil, 0)

	for _, n := range nodes {
		if !visited[n.ID] {
			tree.Excluded = append(tree.Excluded, n)
		}
	}
	return tree
}

// sortSiblings sorts in place by sequence number then id, and returns a warning
// per group of duplicated sequence numbers.
func sortSiblings(siblings []Node) []IntegrityWarning {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].SequenceNumber != siblings[j].SequenceNumber {
			return siblings[i].SequenceNumber < siblings[j].SequenceNumber
		}
		return siblings[i].ID < siblings[j].ID
	})

	var warnings []IntegrityWarning
	for i := 0; i < len(siblings); {
		j := i + 1
		for j < len(siblings) && siblings[j].SequenceNumber == siblings[i].SequenceNumber {
			j++
		}
		if j-i > 1 {
			ids := make([]string, 0, j-i)
			for _, n := range siblings[i:j] {
				ids = append(ids, n.ID)
			}
			warnings = append(warnings, IntegrityWarning{
				ParentID:       siblings[i].ParentID,
				SequenceNumber: siblings[i].SequenceNumber,
				NodeIDs:        ids,
			})
		}
		i = j
	}
	return warnings
}
