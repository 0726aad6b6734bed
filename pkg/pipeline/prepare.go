package pipeline

import (
	"github.com/matzehuels/graphmap/pkg/community"
	"github.com/matzehuels/graphmap/pkg/enrich"
	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// =============================================================================
// Prepare Stage
// =============================================================================

// Prepared is the outcome of [Prepare].
type Prepared struct {
	Snapshot  *mapgraph.Snapshot
	Community *community.Result // Set when clusters were detected
	Enriched  int
	Warnings  []Warning
}

// Prepare enriches g with opts.Attributes, assigns clusters by community
// detection when no node carries one, and builds the run snapshot.
// The input graph is not modified.
func Prepare(g graph.Graph, opts Options) (Prepared, error) {
	var p Prepared
	if len(g.Nodes) == 0 {
		return p, apperrors.New(apperrors.ErrCodeEmptyInput, "graph has no nodes")
	}

	if opts.Attributes != nil {
		nodes := make([]graph.Node, len(g.Nodes))
		copy(nodes, g.Nodes)
		g.Nodes = nodes
		st := enrich.Apply(&g, opts.Attributes)
		p.Enriched = st.Matched
		for _, e := range st.Invalid {
			p.Warnings = append(p.Warnings, warningOf(e))
		}
		if len(st.Missing) > 0 && opts.Logger != nil {
			opts.Logger.Debug("nodes without table row", "count", len(st.Missing))
		}
	}

	b, err := graph.ToBuilder(g)
	if err != nil {
		return p, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid graph")
	}

	unclustered := b.Unclustered()
	switch {
	case len(unclustered) == len(b.NodeIDs()):
		res, err := community.Detect(b, community.Options{
			Resolution: opts.Resolution,
			Seed:       opts.Seed,
			Logger:     opts.Logger,
		})
		if err != nil {
			return p, err
		}
		p.Community = &res
	case len(unclustered) > 0:
		return p, apperrors.New(apperrors.ErrCodeInvalidInput,
			"%d nodes have no cluster", len(unclustered)).WithIDs(unclustered...)
	}

	s, err := b.Build()
	if err != nil {
		return p, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid graph")
	}
	p.Snapshot = s
	return p, nil
}
