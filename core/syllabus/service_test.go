package syllabus_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
	inmemdb "github.com/crackinspine82/RattoMatt-sub001/storage/database/inmem"
	testutil "github.com/crackinspine82/RattoMatt-sub001/tests"
)

type failingRepo struct{}

func (failingRepo) ChapterNodes(context.Context, string) ([]syllabus.Node, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) OrderedChapterNodes(context.Context, string) ([]syllabus.Node, error) {
	return nil, errors.New("connection refused")
}

// reversedRepo serves the store-side order backwards.
type reversedRepo struct {
	syllabus.Repository
}

func (r reversedRepo) OrderedChapterNodes(ctx context.Context, chapterID string) ([]syllabus.Node, error) {
	nodes, err := r.Repository.OrderedChapterNodes(ctx, chapterID)
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes, err
}

func setup(t *testing.T) (*testutil.Logger, interface {
	syllabus.Repository
	AddNodes(nodes ...syllabus.Node) []syllabus.Node
}) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return &testutil.Logger{}, inmemdb.NewSyllabusRepository(db)
}

func TestService_Tree(t *testing.T) {
	logger, repo := setup(t)
	repo.AddNodes(
		syllabus.Node{ID: "root", SequenceNumber: 1, ChapterID: "ch1"},
		syllabus.Node{ID: "child2", ParentID: testutil.StrPtr("root"), SequenceNumber: 2, ChapterID: "ch1"},
		syllabus.Node{ID: "child1", ParentID: testutil.StrPtr("root"), SequenceNumber: 1, ChapterID: "ch1"},
		syllabus.Node{ID: "other", SequenceNumber: 1, ChapterID: "ch2"},
	)
	svc := syllabus.NewService(repo, logger)

	tree, err := svc.Tree(context.Background(), "ch1")
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "child1", "child2"}, tree.NodeIDs())
	assert.Equal(t, 0, logger.Count("WARN"))
}

func TestService_Tree_Errors(t *testing.T) {
	logger, repo := setup(t)
	repo.AddNodes(syllabus.Node{ID: "root", SequenceNumber: 1, ChapterID: "ch1"})

	tests := []struct {
		name      string
		repo      syllabus.Repository
		chapterID string
		check     func(error) bool
	}{
		{name: "missing chapter", repo: repo, chapterID: "  ", check: core.IsPrecondition},
		{name: "unknown chapter", repo: repo, chapterID: "nope", check: core.IsEmptyTree},
		{name: "store unreachable", repo: failingRepo{}, chapterID: "ch1", check: func(err error) bool {
			return err != nil && !core.IsEmptyTree(err) && !core.IsPrecondition(err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := syllabus.NewService(tt.repo, logger).Tree(context.Background(), tt.chapterID)
			if !tt.check(err) {
				t.Errorf("Tree() unexpected error = %v", err)
			}
		})
	}
}

func TestService_Tree_EmptyTreeMessage(t *testing.T) {
	logger, repo := setup(t)

	_, err := syllabus.NewService(repo, logger).Tree(context.Background(), "ch9")

	var emptyErr *core.EmptyTreeError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "ch9", emptyErr.ChapterID)
	assert.Contains(t, err.Error(), "publish structure first")
}

func TestService_Tree_LogsIntegrityProblems(t *testing.T) {
	logger, repo := setup(t)
	repo.AddNodes(
		syllabus.Node{ID: "b", SequenceNumber: 1, ChapterID: "ch1"},
		syllabus.Node{ID: "a", SequenceNumber: 1, ChapterID: "ch1"},
		syllabus.Node{ID: "o", ParentID: testutil.StrPtr("ghost"), SequenceNumber: 1, ChapterID: "ch1"},
	)

	tree, err := syllabus.NewService(repo, logger).Tree(context.Background(), "ch1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tree.NodeIDs())
	// one duplicate group, one exclusion notice
	assert.Equal(t, 2, logger.Count("WARN"))
}

func TestService_Tree_OnlyOrphans(t *testing.T) {
	logger, repo := setup(t)
	repo.AddNodes(syllabus.Node{ID: "o", ParentID: testutil.StrPtr("ghost"), SequenceNumber: 1, ChapterID: "ch1"})

	_, err := syllabus.NewService(repo, logger).Tree(context.Background(), "ch1")
	assert.True(t, core.IsEmptyTree(err))
	assert.Equal(t, 1, logger.Count("WARN"))
}

func TestService_Verify(t *testing.T) {
	logger, repo := setup(t)
	repo.AddNodes(
		syllabus.Node{ID: "r", SequenceNumber: 1, ChapterID: "ch1"},
		syllabus.Node{ID: "c", ParentID: testutil.StrPtr("r"), SequenceNumber: 1, ChapterID: "ch1"},
	)

	svc := syllabus.NewService(repo, logger)
	tree, err := svc.Tree(context.Background(), "ch1")
	require.NoError(t, err)

	diff, err := svc.Verify(context.Background(), tree)
	require.NoError(t, err)
	assert.Empty(t, diff)

	diff, err = syllabus.NewService(reversedRepo{repo}, logger).Verify(context.Background(), tree)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- materialized")
	assert.Contains(t, diff, "+++ store")
}
