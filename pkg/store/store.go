// Package store persists render runs.
//
// A [Run] records one render: its id, input hash, the resulting map
// document and the artifact files written for it. Two backends implement
// [Store]:
//   - file: one directory per run under a base directory, for the CLI and
//     single-instance servers
//   - mongo: a MongoDB collection, for shared multi-instance deployments
//
// Artifact files always live on the local filesystem under the run's
// directory; only metadata and the map document go to the backend.
//
// # Usage
//
//	st, err := store.NewFileStore("")  // Uses ~/.local/share/graphmap/runs/
//	run := store.NewRun(graphHash)
//	run.Map = m
//	err = st.Save(ctx, run)
//
//	runs, err := st.List(ctx, 20)
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
	"github.com/matzehuels/graphmap/pkg/graph"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("run not found")

	// ErrInvalidID is returned for ids that are not run ids.
	ErrInvalidID = errors.New("invalid run id")
)

// Run is one stored render run.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	GraphHash string        `json:"graph_hash" bson:"graph_hash"`
	CacheKey  string        `json:"cache_key,omitempty" bson:"cache_key,omitempty"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Summary   Summary       `json:"summary" bson:"summary"`
	Artifacts []string      `json:"artifacts,omitempty" bson:"artifacts,omitempty"`
	Map       *graph.Map    `json:"map,omitempty" bson:"map,omitempty"`
}

// Summary holds the headline numbers of a run, listed without the map.
type Summary struct {
	Nodes       int  `json:"nodes" bson:"nodes"`
	Territories int  `json:"territories" bson:"territories"`
	Colors      int  `json:"colors" bson:"colors"`
	Warnings    int  `json:"warnings" bson:"warnings"`
	Fallback    bool `json:"fallback,omitempty" bson:"fallback,omitempty"`
	CacheHit    bool `json:"cache_hit,omitempty" bson:"cache_hit,omitempty"`
}

// NewRun creates a run with a fresh id and the current time.
func NewRun(graphHash string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		GraphHash: graphHash,
	}
}

// ValidID reports whether id is a canonical lowercase run id.
func ValidID(id string) bool {
	return apperrors.ValidateRunID(id) == nil
}

// Store is the interface for run storage backends.
type Store interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with id, including its map.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first, without their maps.
	List(ctx context.Context, limit int) ([]*Run, error)

	// ArtifactDir returns the local directory holding the run's artifacts.
	ArtifactDir(id string) string

	// Close releases backend resources.
	Close() error
}
