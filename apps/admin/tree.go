package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

type treeInput struct {
	ChapterID string `json:"chapter_id" validate:"required"`
}

var errTreeMismatch = errors.New("materialized order differs from the database order")

func (cli *commandLine) tree(ctx context.Context, in treeInput, check bool) error {
	if err := cli.setUpDB(ctx); err != nil {
		return err
	}

	svc := syllabus.NewService(cli.syllabusRepo, cli.logger)
	tree, err := svc.Tree(ctx, in.ChapterID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cli.out, tree.Outline())

	if !check {
		return nil
	}
	diff, err := svc.Verify(ctx, tree)
	if err != nil {
		return err
	}
	if diff != "" {
		_, _ = fmt.Fprint(cli.out, diff)
		return errTreeMismatch
	}
	_, _ = fmt.Fprintln(cli.out, "order verified against the database")
	return nil
}
