package syllabus

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one row of the syllabus hierarchy of a chapter.
type Node struct {
	ID             string  `json:"id"`
	ParentID       *string `json:"parent_id"`
	SequenceNumber int     `json:"sequence_number"`
	ChapterID      string  `json:"chapter_id"`
	Title          string  `json:"title"`
}

func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

func (n Node) parentKey() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// SortPath holds the sequence numbers from the chapter root down to a node.
type SortPath []int

// Less compares two paths lexicographically; a prefix sorts first.
func (p SortPath) Less(other SortPath) bool {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			return p[i] < other[i]
		}
	}
	return len(p) < len(other)
}

func (p SortPath) String() string {
	parts := make([]string, 0, len(p))
	for _, seq := range p {
		parts = append(parts, strconv.Itoa(seq))
	}
	return strings.Join(parts, ".")
}

// TreeNode is a Node placed in the materialized tree.
type TreeNode struct {
	Node
	Depth    int
	SortPath SortPath
}

// IntegrityWarning flags siblings sharing a sequence number.
// They are ordered by id ascending.
type IntegrityWarning struct {
	ParentID       *string
	SequenceNumber int
	NodeIDs        []string
}

func (w IntegrityWarning) String() string {
	parent := "<root>"
	if w.ParentID != nil {
		parent = *w.ParentID
	}
	return fmt.Sprintf("duplicate sequence number %d under parent %s: nodes %s",
		w.SequenceNumber, parent, strings.Join(w.NodeIDs, ", "))
}

// Tree is the pre-order materialization of a chapter.
type Tree struct {
	ChapterID string
	Nodes     []TreeNode
	// Orphans have a parent id that does not resolve within the chapter.
	Orphans []Node
	// Excluded lists every unreachable node: orphans and their descendants.
	Excluded []Node
	Warnings []IntegrityWarning
}

func (t Tree) Len() int {
	return len(t.Nodes)
}

func (t Tree) IsEmpty() bool {
	return len(t.Nodes) == 0
}

// NodeIDs returns the node identifiers in tree order.
func (t Tree) NodeIDs() []string {
	ids := make([]string, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// Outline renders the tree as an indented list, one node per line.
func (t Tree) Outline() string {
	var b strings.Builder
	for _, n := range t.Nodes {
		b.WriteString(strings.Repeat("  ", n.Depth))
		b.WriteString(n.SortPath.String())
		b.WriteString(" ")
		b.WriteString(n.Title)
		b.WriteString(" [")
		b.WriteString(n.ID)
		b.WriteString("]\n")
	}
	return b.String()
}
