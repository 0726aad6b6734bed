package territory

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/geom"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// RegionMode selects the shape of the clip region.
type RegionMode string

const (
	// RegionBBox clips to the padded bounding box of all nodes.
	RegionBBox RegionMode = "bbox"
	// RegionHull clips to the convex hull of all nodes grown by the padding.
	RegionHull RegionMode = "hull"
)

// Defaults for [Options].
const (
	DefaultPadding = 2.0
	// NoColor marks a territory that has not been colored.
	NoColor = -1
)

// Options configures [Partition].
type Options struct {
	Region RegionMode
	// Padding grows the clip region beyond the outermost nodes.
	Padding float64
	// Bounds, when non-nil, is used as the clip region instead of one
	// derived from the nodes.
	Bounds *orb.Bound
	// Simplify is the Douglas-Peucker tolerance applied to territory rings.
	// Zero only removes exactly collinear vertices.
	Simplify float64
	// Tolerance is the distance within which points coincide. Zero derives
	// it from the region size.
	Tolerance float64
	// Logger receives warnings as they occur. Nil discards them.
	Logger *log.Logger
}

// Territory is the region of one cluster.
type Territory struct {
	Cluster   int    // Cluster index in the snapshot
	ClusterID string // Cluster id
	Polygon   orb.Polygon
	Members   []int // Node indices
	Neighbors []int // Adjacent territory indices, sorted
	Color     int
}

// Empty reports whether the territory has no area.
func (t Territory) Empty() bool { return len(t.Polygon) == 0 }

// Area returns the polygon area.
func (t Territory) Area() float64 { return planar.Area(t.Polygon) }

// Result is the outcome of [Partition].
type Result struct {
	// Territories is indexed by cluster.
	Territories []Territory
	// Region is the clip region.
	Region orb.Ring
	// Tolerance is the coincidence tolerance that was used.
	Tolerance float64
	// Cells holds the Voronoi cell of every node.
	Cells []geom.Cell
	// Warnings lists recovered problems.
	Warnings []*apperrors.Error
}

// Partition builds one territory per cluster from node positions indexed
// like s.Nodes().
func Partition(s *mapgraph.Snapshot, positions []orb.Point, opts Options) (Result, error) {
	if len(positions) != s.NodeCount() {
		return Result{}, apperrors.New(apperrors.ErrCodeInvalidInput,
			"got %d positions for %d nodes", len(positions), s.NodeCount())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	region, err := clipRegion(positions, opts)
	if err != nil {
		return Result{}, err
	}
	tol := opts.Tolerance
	if tol <= 0 {
		b := region.Bound()
		tol = 1e-7 * math.Max(1, math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
	}

	logger.Debug("Partitioning", "nodes", len(positions), "region", opts.Region, "union", geom.UnionEngine)
	res := Result{Region: region, Tolerance: tol}
	warn := func(w *apperrors.Error) {
		logger.Warn(w.Message, "code", w.Code, "ids", w.IDs)
		res.Warnings = append(res.Warnings, w)
	}

	tess := geom.Voronoi(positions, region)
	res.Cells = tess.Cells
	if len(tess.Skipped) > 0 {
		ids := make([]string, len(tess.Skipped))
		for k, sk := range tess.Skipped {
			ids[k] = s.Node(sk.Site).ID
		}
		warn(apperrors.New(apperrors.ErrCodeGeometryDegenerate,
			"%d nodes got no cell (duplicate or outside region)", len(ids)).WithIDs(ids...))
	}

	res.Territories = make([]Territory, s.ClusterCount())
	for c, cl := range s.Clusters() {
		t := Territory{Cluster: c, ClusterID: cl.ID, Members: cl.Members, Color: NoColor}
		t.Polygon = dissolve(tess.Cells, cl, tol, warn)
		if t.Polygon != nil {
			t.Polygon = simplifyPolygon(t.Polygon, opts.Simplify)
		}
		res.Territories[c] = t
	}
	return res, nil
}

func dissolve(cells []geom.Cell, cl mapgraph.Cluster, tol float64, warn func(*apperrors.Error)) orb.Polygon {
	d, err := geom.Union(cells, cl.Members, tol)
	switch {
	case errors.Is(err, geom.ErrEmptyGroup):
		warn(apperrors.Wrap(apperrors.ErrCodeGeometryDegenerate, err,
			"cluster has no area").WithIDs(cl.ID))
		return nil
	case err != nil:
		poly, ok := geom.LargestCell(cells, cl.Members)
		warn(apperrors.Wrap(apperrors.ErrCodeUnionFailure, err,
			"using largest member cell").WithIDs(cl.ID))
		if !ok {
			return nil
		}
		return poly
	}
	if d.Parts > 1 {
		warn(apperrors.New(apperrors.ErrCodeUnionMultipart,
			"cluster split into %d parts, kept largest (dropped area %.4g)", d.Parts, d.DroppedArea).WithIDs(cl.ID))
	}
	return d.Polygon
}

func clipRegion(positions []orb.Point, opts Options) (orb.Ring, error) {
	if opts.Bounds != nil {
		if b := *opts.Bounds; b.Max[0] <= b.Min[0] || b.Max[1] <= b.Min[1] {
			return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "clip bounds have no area")
		}
		return geom.PaddedBound(*opts.Bounds, 0), nil
	}
	if len(positions) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyInput, "no positions to partition")
	}
	pad := opts.Padding
	if pad <= 0 {
		pad = DefaultPadding
	}
	switch opts.Region {
	case RegionBBox, "":
		return geom.PaddedBound(geom.BoundOf(positions), pad), nil
	case RegionHull:
		return geom.BufferedHull(positions, pad, geom.DefaultBufferSegments), nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown region mode %q", opts.Region)
	}
}

// simplifyPolygon runs Douglas-Peucker on every ring, keeping the original
// ring whenever simplification would collapse it or flip its orientation.
func simplifyPolygon(p orb.Polygon, tol float64) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	dp := simplify.DouglasPeucker(tol)
	for _, r := range p {
		s, ok := dp.Simplify(r.Clone()).(orb.Ring)
		if !ok || len(s) < 4 || math.Signbit(geom.SignedArea(s)) != math.Signbit(geom.SignedArea(r)) {
			s = r
		}
		out = append(out, s)
	}
	return out
}

// String describes the territory for logs.
func (t Territory) String() string {
	return fmt.Sprintf("territory %s (%d members, %d neighbors)", t.ClusterID, len(t.Members), len(t.Neighbors))
}
