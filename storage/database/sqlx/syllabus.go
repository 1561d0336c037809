package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

const (
	chapterNodesQuery = `
		SELECT id, parent_id, sequence_number, chapter_id, title
		FROM syllabus_nodes
		WHERE chapter_id = ?`

	// orderedChapterNodesQuery walks the chapter from its roots, building a sort path of
	// zero-padded sequence numbers. Both verbs take the dialect's padding expression.
	// Duplicate sibling sequence numbers share a sort path, so their subtrees interleave.
	orderedChapterNodesQuery = `
		WITH RECURSIVE tree AS (
			SELECT id, parent_id, sequence_number, chapter_id, title,
				CAST(%[1]s AS TEXT) AS sort_path
			FROM syllabus_nodes
			WHERE chapter_id = ? AND parent_id IS NULL
			UNION ALL
			SELECT n.id, n.parent_id, n.sequence_number, n.chapter_id, n.title,
				CAST(t.sort_path || '.' || %[2]s AS TEXT)
			FROM syllabus_nodes n
			JOIN tree t ON n.parent_id = t.id
			WHERE n.chapter_id = t.chapter_id
		)
		SELECT id, parent_id, sequence_number, chapter_id, title
		FROM tree
		ORDER BY sort_path, id`
)

var padExprs = map[string][2]string{
	"postgres": {`lpad(sequence_number::text, 10, '0')`, `lpad(n.sequence_number::text, 10, '0')`},
	"sqlite":   {`printf('%010d', sequence_number)`, `printf('%010d', n.sequence_number)`},
}

type nodeRow struct {
	ID             string      `db:"id"`
	ParentID       null.String `db:"parent_id"`
	SequenceNumber int         `db:"sequence_number"`
	ChapterID      string      `db:"chapter_id"`
	Title          string      `db:"title"`
}

func (row nodeRow) unbind() syllabus.Node {
	return syllabus.Node{
		ID:             row.ID,
		ParentID:       row.ParentID.Ptr(),
		SequenceNumber: row.SequenceNumber,
		ChapterID:      row.ChapterID,
		Title:          row.Title,
	}
}

func unbindSlice(rows []nodeRow) []syllabus.Node {
	nodes := make([]syllabus.Node, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, row.unbind())
	}
	return nodes
}

type syllabusRepository struct {
	db *sqlx.DB
}

var _ syllabus.Repository = (*syllabusRepository)(nil) // interface compliance check

func NewSyllabusRepository(db *sqlx.DB) *syllabusRepository {
	return &syllabusRepository{db: db}
}

func (repo syllabusRepository) ChapterNodes(ctx context.Context, chapterID string) ([]syllabus.Node, error) {
	rows := make([]nodeRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(chapterNodesQuery), chapterID); err != nil {
		return nil, errors.Wrap(err, "querying syllabus nodes")
	}
	return unbindSlice(rows), nil
}

func (repo syllabusRepository) OrderedChapterNodes(ctx context.Context, chapterID string) ([]syllabus.Node, error) {
	pad, ok := padExprs[repo.db.DriverName()]
	if !ok {
		return nil, errors.Errorf("ordered tree query not supported on %q", repo.db.DriverName())
	}
	query := repo.db.Rebind(fmt.Sprintf(orderedChapterNodesQuery, pad[0], pad[1]))

	rows := make([]nodeRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, query, chapterID); err != nil {
		return nil, errors.Wrap(err, "querying ordered syllabus nodes")
	}
	return unbindSlice(rows), nil
}
