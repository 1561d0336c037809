package main

import (
	"context"
	"fmt"

	"github.com/crackinspine82/RattoMatt-sub001/core/content"
	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

type assignInput struct {
	ChapterID string `json:"chapter_id" validate:"required"`
	Path      string `json:"file" validate:"required,file"`
	Shape     string `json:"shape" validate:"oneof=auto items sections"`
}

// assign maps the entries of a content file onto the chapter's syllabus nodes.
func (cli *commandLine) assign(ctx context.Context, in assignInput, strict bool) error {
	shape, err := content.ParseShape(in.Shape)
	if err != nil {
		return err
	}
	if err = cli.setUpDB(ctx); err != nil {
		return err
	}

	svc := content.NewService(syllabus.NewService(cli.syllabusRepo, cli.logger), cli.artifacts, cli.logger)
	report, err := svc.AssignNodes(ctx, content.AssignRequest{
		ChapterID: in.ChapterID,
		Path:      in.Path,
		Shape:     shape,
		Strict:    strict,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cli.out, "%s: %d/%d %s assigned (%s, %d nodes, %d unused)\n",
		report.Path, report.Assigned, report.Entries, report.Shape, report.Strategy, report.Nodes, report.UnusedNodes)
	return nil
}
