package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

type syllabusRepository struct {
	db *nodeTable
}

var _ syllabus.Repository = (*syllabusRepository)(nil) // interface compliance check

func NewSyllabusRepository(db *DB) *syllabusRepository {
	return &syllabusRepository{db: db.syllabus}
}

// AddNodes stores the nodes as published structure. Nodes without an id get a new UUID.
func (repo *syllabusRepository) AddNodes(nodes ...syllabus.Node) []syllabus.Node {
	repo.db.Lock()
	defer repo.db.Unlock()

	added := make([]syllabus.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if _, ok := repo.db.table[n.ID]; !ok {
			repo.db.order = append(repo.db.order, n.ID)
		}
		node := n
		repo.db.table[n.ID] = &node
		added = append(added, n)
	}
	return added
}

func (repo *syllabusRepository) ChapterNodes(_ context.Context, chapterID string) ([]syllabus.Node, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	nodes := make([]syllabus.Node, 0)
	for _, id := range repo.db.order {
		if n := repo.db.table[id]; n.ChapterID == chapterID {
			nodes = append(nodes, *n)
		}
	}
	return nodes, nil
}

// OrderedChapterNodes has no query engine to delegate to, it materializes in memory.
func (repo *syllabusRepository) OrderedChapterNodes(ctx context.Context, chapterID string) ([]syllabus.Node, error) {
	nodes, err := repo.ChapterNodes(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	tree := syllabus.Materialize(chapterID, nodes)
	ordered := make([]syllabus.Node, 0, tree.Len())
	for _, n := range tree.Nodes {
		ordered = append(ordered, n.Node)
	}
	return ordered, nil
}
