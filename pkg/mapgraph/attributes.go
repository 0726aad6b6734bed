package mapgraph

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/matzehuels/graphmap/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Attributes is the optional per-node record passed through to the point
// layer. Nil fields are omitted from the output.
type Attributes struct {
	Label          *string  `json:"label,omitempty" validate:"omitempty,max=512"`
	Votes          *int     `json:"num_votes,omitempty" validate:"omitempty,gte=0"`
	Size           *float64 `json:"size,omitempty" validate:"omitempty,gte=0,lte=1"`
	Rating         *float64 `json:"ratings,omitempty" validate:"omitempty,gte=0,lte=10"`
	BayesRating    *float64 `json:"bayes_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Complexity     *float64 `json:"complexity,omitempty" validate:"omitempty,gte=0,lte=5"`
	MinPlayers     *int     `json:"min_players,omitempty" validate:"omitempty,gte=0"`
	MaxPlayers     *int     `json:"max_players,omitempty" validate:"omitempty,gte=0"`
	MinPlayersRec  *int     `json:"min_players_rec,omitempty" validate:"omitempty,gte=0"`
	MaxPlayersRec  *int     `json:"max_players_rec,omitempty" validate:"omitempty,gte=0"`
	MinPlayersBest *int     `json:"min_players_best,omitempty" validate:"omitempty,gte=0"`
	MaxPlayersBest *int     `json:"max_players_best,omitempty" validate:"omitempty,gte=0"`
	MinTime        *int     `json:"min_time,omitempty" validate:"omitempty,gte=0"`
	MaxTime        *int     `json:"max_time,omitempty" validate:"omitempty,gte=0"`
	Year           *int     `json:"year,omitempty" validate:"omitempty,gte=-5000,lte=3000"`
}

// Validate checks field ranges and that every min/max pair is ordered.
func (a Attributes) Validate() error {
	if err := validate.Struct(a); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid attributes")
	}
	pairs := []struct {
		name     string
		min, max *int
	}{
		{"players", a.MinPlayers, a.MaxPlayers},
		{"players_rec", a.MinPlayersRec, a.MaxPlayersRec},
		{"players_best", a.MinPlayersBest, a.MaxPlayersBest},
		{"time", a.MinTime, a.MaxTime},
	}
	for _, p := range pairs {
		if p.min != nil && p.max != nil && *p.min > *p.max {
			return apperrors.New(apperrors.ErrCodeInvalidInput,
				"invalid attributes: min_%s %d > max_%s %d", p.name, *p.min, p.name, *p.max)
		}
	}
	return nil
}

// Merge returns a copy of a with every nil field filled from other.
func (a Attributes) Merge(other Attributes) Attributes {
	fill(&a.Label, other.Label)
	fill(&a.Votes, other.Votes)
	fill(&a.Size, other.Size)
	fill(&a.Rating, other.Rating)
	fill(&a.BayesRating, other.BayesRating)
	fill(&a.Complexity, other.Complexity)
	fill(&a.MinPlayers, other.MinPlayers)
	fill(&a.MaxPlayers, other.MaxPlayers)
	fill(&a.MinPlayersRec, other.MinPlayersRec)
	fill(&a.MaxPlayersRec, other.MaxPlayersRec)
	fill(&a.MinPlayersBest, other.MinPlayersBest)
	fill(&a.MaxPlayersBest, other.MaxPlayersBest)
	fill(&a.MinTime, other.MinTime)
	fill(&a.MaxTime, other.MaxTime)
	fill(&a.Year, other.Year)
	return a
}

// Properties returns the set fields keyed by their output property names.
func (a Attributes) Properties() map[string]any {
	p := make(map[string]any)
	put(p, "label", a.Label)
	put(p, "num_votes", a.Votes)
	put(p, "size", a.Size)
	put(p, "ratings", a.Rating)
	put(p, "bayes_rating", a.BayesRating)
	put(p, "complexity", a.Complexity)
	put(p, "min_players", a.MinPlayers)
	put(p, "max_players", a.MaxPlayers)
	put(p, "min_players_rec", a.MinPlayersRec)
	put(p, "max_players_rec", a.MaxPlayersRec)
	put(p, "min_players_best", a.MinPlayersBest)
	put(p, "max_players_best", a.MaxPlayersBest)
	put(p, "min_time", a.MinTime)
	put(p, "max_time", a.MaxTime)
	put(p, "year", a.Year)
	return p
}

// DisplayLabel returns the label, or fallback when none is set.
func (a Attributes) DisplayLabel(fallback string) string {
	if a.Label != nil && *a.Label != "" {
		return *a.Label
	}
	return fallback
}

// String renders the set fields for debugging.
func (a Attributes) String() string {
	return fmt.Sprint(a.Properties())
}

// Ptr returns a pointer to v. It is a convenience for building Attributes.
func Ptr[T any](v T) *T { return &v }

func fill[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func put[T any](p map[string]any, key string, v *T) {
	if v != nil {
		p[key] = *v
	}
}
