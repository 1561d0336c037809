package content

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/crackinspine82/RattoMatt-sub001/core"
	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

type (
	// Store loads and saves artifacts by path.
	Store interface {
		Load(path string, shape Shape) (*Artifact, error)
		Save(path string, artifact *Artifact) error
	}

	TreeProvider interface {
		Tree(ctx context.Context, chapterID string) (syllabus.Tree, error)
	}

	AssignRequest struct {
		ChapterID string
		Path      string
		Shape     Shape
		// Strict rejects section lists whose length differs from the node count.
		Strict bool
	}

	Report struct {
		ChapterID   string
		Path        string
		Shape       Shape
		Strategy    string
		Nodes       int
		Entries     int
		Assigned    int
		Unassigned  int
		UnusedNodes int
	}

	Service struct {
		trees  TreeProvider
		store  Store
		logger core.Logger
	}
)

func NewService(trees TreeProvider, store Store, logger core.Logger) *Service {
	return &Service{trees: trees, store: store, logger: logger}
}

func (r AssignRequest) validate() error {
	var flds []core.FieldError
	if core.CleanString(r.ChapterID) == "" {
		flds = append(flds, core.FieldError{Field: "chapter_id", Error: "this field is required"})
	}
	if core.CleanString(r.Path) == "" {
		flds = append(flds, core.FieldError{Field: "path", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return core.NewPreconditionError(errors.New("invalid arguments"), flds...)
	}
	return nil
}

// AssignNodes runs one assignment: materialize the chapter, load the artifact,
// map its entries with the strategy of its shape and overwrite it.
// Nothing is written unless every step succeeds.
func (svc *Service) AssignNodes(ctx context.Context, req AssignRequest) (Report, error) {
	if err := req.validate(); err != nil {
		return Report{}, err
	}
	if req.Shape == "" {
		req.Shape = ShapeAuto
	}

	tree, err := svc.trees.Tree(ctx, req.ChapterID)
	if err != nil {
		return Report{}, err
	}
	nodeIDs := tree.NodeIDs()

	artifact, err := svc.store.Load(req.Path, req.Shape)
	if err != nil {
		return Report{}, err
	}

	strategy, err := StrategyFor(artifact.Shape())
	if err != nil {
		return Report{}, err
	}
	if req.Strict && artifact.Shape() == ShapeSections && artifact.Len() != len(nodeIDs) {
		return Report{}, &core.MismatchError{Sections: artifact.Len(), Nodes: len(nodeIDs)}
	}

	mapping, err := strategy.Map(nodeIDs, artifact.Len())
	if err != nil {
		return Report{}, err
	}
	if err = artifact.Apply(mapping); err != nil {
		return Report{}, errors.Wrapf(err, "assigning nodes to %s", req.Path)
	}
	if err = svc.store.Save(req.Path, artifact); err != nil {
		return Report{}, err
	}

	report := newReport(req, artifact, strategy, mapping, len(nodeIDs))
	svc.logger.Info(
		fmt.Sprintf("assigned %d of %d %s to %d syllabus node(s) (%s)",
			report.Assigned, report.Entries, report.Shape, report.Nodes, report.Strategy),
		core.Fields{
			"chapter_id":   report.ChapterID,
			"path":         report.Path,
			"unassigned":   report.Unassigned,
			"unused_nodes": report.UnusedNodes,
		},
	)
	if report.Unassigned > 0 {
		svc.logger.Warn(fmt.Sprintf("%d %s left without a syllabus node", report.Unassigned, report.Shape),
			core.Fields{"chapter_id": report.ChapterID, "path": report.Path})
	}
	return report, nil
}

func newReport(req AssignRequest, artifact *Artifact, strategy Strategy, mapping Mapping, nodes int) Report {
	used := make(map[string]bool, nodes)
	for _, id := range mapping {
		if id != "" {
			used[id] = true
		}
	}
	assigned := mapping.Assigned()
	return Report{
		ChapterID:   req.ChapterID,
		Path:        req.Path,
		Shape:       artifact.Shape(),
		Strategy:    strategy.Name(),
		Nodes:       nodes,
		Entries:     artifact.Len(),
		Assigned:    assigned,
		Unassigned:  artifact.Len() - assigned,
		UnusedNodes: nodes - len(used),
	}
}
