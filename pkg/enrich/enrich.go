// Package enrich merges node attributes from a CSV table into a graph
// document.
//
// The table has a header row. One column holds the node id (default
// "bgg_id"); the other recognized columns map onto [mapgraph.Attributes]
// fields. Unknown columns are ignored, empty cells leave the field unset and
// unparsable cells are reported as issues without failing the read.
package enrich

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
	"github.com/matzehuels/graphmap/pkg/mapgraph"
)

// DefaultKeyColumn names the id column of the attribute table.
const DefaultKeyColumn = "bgg_id"

// Table maps node ids to attribute records.
type Table map[string]mapgraph.Attributes

type setter func(a *mapgraph.Attributes, v string) error

func setString(dst func(*mapgraph.Attributes) **string) setter {
	return func(a *mapgraph.Attributes, v string) error {
		*dst(a) = &v
		return nil
	}
}

func setInt(dst func(*mapgraph.Attributes) **int) setter {
	return func(a *mapgraph.Attributes, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			f, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return err
			}
			n = int(math.Round(f))
		}
		*dst(a) = &n
		return nil
	}
}

func setFloat(dst func(*mapgraph.Attributes) **float64) setter {
	return func(a *mapgraph.Attributes, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite value %q", v)
		}
		*dst(a) = &f
		return nil
	}
}

// columns maps recognized header names to attribute setters.
var columns = map[string]setter{
	"name":             setString(func(a *mapgraph.Attributes) **string { return &a.Label }),
	"label":            setString(func(a *mapgraph.Attributes) **string { return &a.Label }),
	"num_votes":        setInt(func(a *mapgraph.Attributes) **int { return &a.Votes }),
	"avg_rating":       setFloat(func(a *mapgraph.Attributes) **float64 { return &a.Rating }),
	"bayes_rating":     setFloat(func(a *mapgraph.Attributes) **float64 { return &a.BayesRating }),
	"complexity":       setFloat(func(a *mapgraph.Attributes) **float64 { return &a.Complexity }),
	"min_players":      setInt(func(a *mapgraph.Attributes) **int { return &a.MinPlayers }),
	"max_players":      setInt(func(a *mapgraph.Attributes) **int { return &a.MaxPlayers }),
	"min_players_rec":  setInt(func(a *mapgraph.Attributes) **int { return &a.MinPlayersRec }),
	"max_players_rec":  setInt(func(a *mapgraph.Attributes) **int { return &a.MaxPlayersRec }),
	"min_players_best": setInt(func(a *mapgraph.Attributes) **int { return &a.MinPlayersBest }),
	"max_players_best": setInt(func(a *mapgraph.Attributes) **int { return &a.MaxPlayersBest }),
	"min_time":         setInt(func(a *mapgraph.Attributes) **int { return &a.MinTime }),
	"max_time":         setInt(func(a *mapgraph.Attributes) **int { return &a.MaxTime }),
	"year":             setInt(func(a *mapgraph.Attributes) **int { return &a.Year }),
}

// Options configures [ReadCSV].
type Options struct {
	// KeyColumn names the id column; empty means [DefaultKeyColumn].
	KeyColumn string
}

// ReadCSVFile reads an attribute table from path.
func ReadCSVFile(path string, opts Options) (Table, []*apperrors.Error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "open attribute table")
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV reads an attribute table. Cell-level problems are returned as
// INVALID_INPUT issues carrying the row id; structural problems (missing
// header or key column, malformed CSV) are returned as the error.
func ReadCSV(r io.Reader, opts Options) (Table, []*apperrors.Error, error) {
	key := opts.KeyColumn
	if key == "" {
		key = DefaultKeyColumn
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, apperrors.New(apperrors.ErrCodeEmptyInput, "attribute table has no header")
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read attribute header")
	}

	keyIdx := -1
	setters := make([]setter, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		header[i] = h
		if h == key {
			keyIdx = i
			continue
		}
		setters[i] = columns[h]
	}
	if keyIdx < 0 {
		return nil, nil, apperrors.New(apperrors.ErrCodeInvalidInput, "attribute table has no %q column", key)
	}

	table := make(Table)
	var issues []*apperrors.Error
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read attribute table")
		}
		if keyIdx >= len(rec) || strings.TrimSpace(rec[keyIdx]) == "" {
			continue
		}
		id := strings.TrimSpace(rec[keyIdx])
		var attrs mapgraph.Attributes
		for i, set := range setters {
			if set == nil || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			if err := set(&attrs, v); err != nil {
				issues = append(issues, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err,
					"column %s: cannot parse %q", header[i], v).WithIDs(id))
			}
		}
		table[id] = table[id].Merge(attrs)
	}
	return table, issues, nil
}

// Stats reports what [Apply] did.
type Stats struct {
	Matched int
	Missing []string
	Invalid []*apperrors.Error
}

// Apply fills unset attribute fields of every node from the table. Fields
// already set on the node win. A merged record that fails validation is
// reported and the node keeps its original attributes.
func Apply(g *graph.Graph, table Table) Stats {
	var st Stats
	for i := range g.Nodes {
		n := &g.Nodes[i]
		row, ok := table[n.ID]
		if !ok {
			st.Missing = append(st.Missing, n.ID)
			continue
		}
		merged := n.Attrs.Merge(row)
		if err := merged.Validate(); err != nil {
			var ae *apperrors.Error
			if !errors.As(err, &ae) {
				ae = apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid attributes")
			}
			st.Invalid = append(st.Invalid, ae.WithIDs(n.ID))
			continue
		}
		n.Attrs = merged
		st.Matched++
	}
	return st
}
