package mapcolor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

// Policy selects the behavior when exact coloring fails.
type Policy string

// Fallback policies.
const (
	PolicyBestEffort Policy = "best-effort"
	PolicyExtend     Policy = "extend"
	PolicyFail       Policy = "fail"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyBestEffort, PolicyExtend, PolicyFail:
		return true
	}
	return false
}

// Defaults for [Options].
const (
	DefaultColors   = 4
	DefaultMaxSteps = 1_000_000
)

// Palette holds the fill colors of the first four colors.
var Palette = []string{"#516ebc", "#153477", "#00529c", "#37009c"}

// Fill returns the fill of color c. Colors beyond [Palette] get generated
// fills (see palette.go), distinct from each other and from the palette.
// Negative colors get the first entry.
func Fill(c int) string {
	if c < 0 {
		c = 0
	}
	if c < len(Palette) {
		return Palette[c]
	}
	return extended.fill(c)
}

// Options configures [Color].
type Options struct {
	Colors   int
	MaxSteps int
	// Budget bounds the wall-clock time of the exact search. Zero means no
	// limit besides MaxSteps.
	Budget   time.Duration
	Fallback Policy
	// Labels names vertices in errors. Nil uses vertex indices.
	Labels []string
}

func (o Options) withDefaults() Options {
	if o.Colors <= 0 {
		o.Colors = DefaultColors
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Fallback == "" {
		o.Fallback = PolicyBestEffort
	}
	return o
}

// Result is a coloring.
type Result struct {
	// Colors holds the color of every vertex.
	Colors []int
	// NumColors is the number of distinct colors available to Colors.
	NumColors int
	// Steps counts color trials of the exact search.
	Steps int
	// Exact reports whether backtracking found a proper coloring.
	Exact bool
	// Policy is the configured fallback policy, set even when Exact.
	Policy Policy
	// Fallback is the policy that produced Colors; empty when Exact.
	Fallback Policy
	// Reason is COLORING_EXHAUSTED or COLORING_BUDGET_EXCEEDED when the
	// exact search failed.
	Reason apperrors.Code
	// Conflicts lists adjacent pairs sharing a color (best-effort only).
	Conflicts [][2]int
}

// Color colors the graph given as adjacency lists. adj must be symmetric.
//
// Color returns an error under [PolicyFail] when no exact coloring was
// found, and ctx.Err() when ctx is cancelled during the search.
func Color(ctx context.Context, adj [][]int, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if !opts.Fallback.Valid() {
		return Result{}, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown coloring policy %q", opts.Fallback)
	}

	s := newSearch(ctx, adj, opts)
	ok := s.run()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Steps: s.steps, NumColors: opts.Colors, Policy: opts.Fallback}
	if ok {
		res.Colors = s.colors
		res.Exact = true
		return res, nil
	}

	res.Reason = apperrors.ErrCodeColoringExhausted
	if s.aborted {
		res.Reason = apperrors.ErrCodeColoringBudgetExceeded
	}
	res.Fallback = opts.Fallback

	switch opts.Fallback {
	case PolicyFail:
		ids := []string{label(opts.Labels, s.deepest)}
		for _, j := range adj[s.deepest] {
			ids = append(ids, label(opts.Labels, j))
		}
		return Result{}, apperrors.New(res.Reason,
			"no %d-coloring found after %d steps", opts.Colors, s.steps).WithIDs(ids...)
	case PolicyExtend:
		k, colors, err := welshPowell(adj)
		if err != nil {
			return Result{}, err
		}
		res.Colors = colors
		res.NumColors = max(k, 1)
	default:
		_, colors, err := welshPowell(adj)
		if err != nil {
			return Result{}, err
		}
		res.Colors = repair(adj, colors, opts.Colors)
		res.Conflicts = Conflicts(adj, res.Colors)
	}
	return res, nil
}

// IsProper reports whether no two adjacent vertices share a color.
func IsProper(adj [][]int, colors []int) bool {
	return len(Conflicts(adj, colors)) == 0
}

// Conflicts returns every adjacent pair (i < j) sharing a color.
func Conflicts(adj [][]int, colors []int) [][2]int {
	var out [][2]int
	for i, ns := range adj {
		for _, j := range ns {
			if i < j && colors[i] == colors[j] {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

func label(labels []string, i int) string {
	if i >= 0 && i < len(labels) {
		return labels[i]
	}
	return strconv.Itoa(i)
}

// String summarizes the result for logs.
func (r Result) String() string {
	if r.Exact {
		return fmt.Sprintf("exact %d-coloring in %d steps", r.NumColors, r.Steps)
	}
	return fmt.Sprintf("%s fallback after %s (%d colors, %d conflicts)", r.Fallback, r.Reason, r.NumColors, len(r.Conflicts))
}

// search is the exact backtracking state.
type search struct {
	ctx      context.Context
	adj      [][]int
	k        int
	maxSteps int
	deadline time.Time
	colors   []int
	steps    int
	aborted  bool
	deepest  int
}

func newSearch(ctx context.Context, adj [][]int, opts Options) *search {
	s := &search{
		ctx:      ctx,
		adj:      adj,
		k:        opts.Colors,
		maxSteps: opts.MaxSteps,
		colors:   make([]int, len(adj)),
	}
	if opts.Budget > 0 {
		s.deadline = time.Now().Add(opts.Budget)
	}
	for i := range s.colors {
		s.colors[i] = -1
	}
	return s
}

func (s *search) run() bool {
	if len(s.adj) == 0 {
		return true
	}
	return s.assign(0)
}

// assign colors vertex v and all later vertices, undoing on failure.
func (s *search) assign(v int) bool {
	if v == len(s.adj) {
		return true
	}
	for c := 0; c < s.k; c++ {
		if s.steps >= s.maxSteps {
			s.aborted = true
			return false
		}
		s.steps++
		if s.steps&1023 == 0 && (s.ctx.Err() != nil || (!s.deadline.IsZero() && time.Now().After(s.deadline))) {
			s.aborted = true
			return false
		}
		if !s.usable(v, c) {
			continue
		}
		s.colors[v] = c
		if s.assign(v + 1) {
			return true
		}
		s.colors[v] = -1
		if s.aborted {
			return false
		}
	}
	if v > s.deepest {
		s.deepest = v
	}
	return false
}

func (s *search) usable(v, c int) bool {
	for _, j := range s.adj[v] {
		if s.colors[j] == c {
			return false
		}
	}
	return true
}
