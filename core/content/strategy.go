package content

import (
	"github.com/pkg/errors"

	"github.com/crackinspine82/RattoMatt-sub001/core"
)

// Mapping holds the node id for each entry index; "" leaves the entry unassigned.
type Mapping []string

// Assigned counts the entries receiving a node.
func (m Mapping) Assigned() int {
	var n int
	for _, id := range m {
		if id != "" {
			n++
		}
	}
	return n
}

// Strategy decides which syllabus node each content entry belongs to.
type Strategy interface {
	Name() string
	// Map computes the node of every entry from the tree-ordered node ids.
	Map(nodeIDs []string, entries int) (Mapping, error)
}

// RoundRobin cycles through the nodes: entry i goes to nodeIDs[i % len(nodeIDs)].
// Used for item lists, where authors produce content in bulk without knowing the nodes.
type RoundRobin struct{}

var _ Strategy = RoundRobin{} // interface compliance check

func (RoundRobin) Name() string {
	return "round-robin"
}

func (RoundRobin) Map(nodeIDs []string, entries int) (Mapping, error) {
	if len(nodeIDs) == 0 {
		return nil, core.NewPreconditionError(errors.New("round-robin assignment needs at least one node"))
	}
	m := make(Mapping, entries)
	for i := range m {
		m[i] = nodeIDs[i%len(nodeIDs)]
	}
	return m, nil
}

// Positional pairs entry i with nodeIDs[i] and never wraps: entries past the last node
// stay unassigned and nodes past the last entry stay unused.
// Used for section lists, which mirror the chapter outline 1:1.
type Positional struct{}

var _ Strategy = Positional{} // interface compliance check

func (Positional) Name() string {
	return "positional"
}

func (Positional) Map(nodeIDs []string, entries int) (Mapping, error) {
	m := make(Mapping, entries)
	for i := 0; i < entries && i < len(nodeIDs); i++ {
		m[i] = nodeIDs[i]
	}
	return m, nil
}

// StrategyFor returns the strategy matching an artifact shape.
func StrategyFor(shape Shape) (Strategy, error) {
	switch shape {
	case ShapeItems:
		return RoundRobin{}, nil
	case ShapeSections:
		return Positional{}, nil
	default:
		return nil, errors.Errorf("no assignment strategy for artifact shape %q", shape)
	}
}
