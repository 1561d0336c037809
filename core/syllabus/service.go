package syllabus

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/crackinspine82/RattoMatt-sub001/core"
)

type (
	Repository interface {
		// ChapterNodes returns every node of the chapter, in no particular order.
		ChapterNodes(ctx context.Context, chapterID string) ([]Node, error)
		// OrderedChapterNodes returns the nodes reachable from the chapter roots in
		// pre-order, as computed by the store itself.
		OrderedChapterNodes(ctx context.Context, chapterID string) ([]Node, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Tree materializes the chapter. An empty chapter yields a *core.EmptyTreeError.
func (svc *Service) Tree(ctx context.Context, chapterID string) (Tree, error) {
	chapterID = core.CleanString(chapterID)
	if chapterID == "" {
		return Tree{}, core.NewPreconditionError(errors.New("missing chapter"), core.FieldError{
			Field: "chapter_id",
			Error: "this field is required",
		})
	}

	nodes, err := svc.repo.ChapterNodes(ctx, chapterID)
	if err != nil {
		return Tree{}, errors.Wrapf(err, "loading syllabus nodes of chapter %s", chapterID)
	}

	tree := Materialize(chapterID, nodes)
	for _, w := range tree.Warnings {
		svc.logger.Warn("syllabus data integrity: "+w.String(), core.Fields{
			"chapter_id":      chapterID,
			"sequence_number": w.SequenceNumber,
			"node_ids":        w.NodeIDs,
		})
	}
	if len(tree.Excluded) > 0 {
		ids := make([]string, 0, len(tree.Excluded))
		for _, n := range tree.Excluded {
			ids = append(ids, n.ID)
		}
		svc.logger.Warn(fmt.Sprintf("excluded %d unreachable syllabus node(s)", len(ids)), core.Fields{
			"chapter_id": chapterID,
			"orphans":    len(tree.Orphans),
			"node_ids":   ids,
		})
	}

	if tree.IsEmpty() {
		return Tree{}, &core.EmptyTreeError{ChapterID: chapterID}
	}
	svc.logger.Debug(fmt.Sprintf("materialized %d syllabus node(s)", tree.Len()), core.Fields{"chapter_id": chapterID})
	return tree, nil
}

// Verify compares the materialized order with the store's own recursive ordering.
// It returns a unified diff of node ids, empty when both agree.
func (svc *Service) Verify(ctx context.Context, tree Tree) (string, error) {
	stored, err := svc.repo.OrderedChapterNodes(ctx, tree.ChapterID)
	if err != nil {
		return "", errors.Wrapf(err, "loading ordered syllabus nodes of chapter %s", tree.ChapterID)
	}

	storeIDs := make([]string, 0, len(stored))
	for _, n := range stored {
		storeIDs = append(storeIDs, n.ID)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines(tree.NodeIDs()),
		B:        lines(storeIDs),
		FromFile: "materialized",
		ToFile:   "store",
		Context:  2,
	})
}

func lines(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return difflib.SplitLines(strings.Join(ids, "\n") + "\n")
}
