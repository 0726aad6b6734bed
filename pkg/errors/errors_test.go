package errors

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("ring self-intersects")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidInput, "node %s has no cluster", "a"), "INVALID_INPUT: node a has no cluster"},
		{"ids", New(ErrCodeColoringExhausted, "no coloring").WithIDs("3", "7"), "COLORING_EXHAUSTED: no coloring [ids: 3,7]"},
		{"cause", Wrap(ErrCodeUnionFailure, cause, "dissolve cluster"), "UNION_FAILURE: dissolve cluster: ring self-intersects"},
		{"ids and cause", Wrap(ErrCodeUnionFailure, cause, "dissolve").WithIDs("c1"), "UNION_FAILURE: dissolve [ids: c1]: ring self-intersects"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapChain(t *testing.T) {
	cause := errors.New("disk full")
	inner := Wrap(ErrCodeUnionFailure, cause, "dissolve").WithIDs("c1")
	outer := fmt.Errorf("render: %w", inner)

	if !errors.Is(outer, cause) {
		t.Error("errors.Is should find the root cause")
	}
	if errors.Unwrap(inner) != cause {
		t.Error("Unwrap should return the cause")
	}
	if got := GetCode(outer); got != ErrCodeUnionFailure {
		t.Errorf("GetCode = %v, want %v", got, ErrCodeUnionFailure)
	}
	if got := GetIDs(outer); !slices.Equal(got, []string{"c1"}) {
		t.Errorf("GetIDs = %v, want [c1]", got)
	}
	if got := UserMessage(outer); got != "dissolve" {
		t.Errorf("UserMessage = %q, want %q", got, "dissolve")
	}
}

func TestAccessorsOutermostWins(t *testing.T) {
	inner := New(ErrCodeColoringExhausted, "no coloring").WithIDs("3")
	err := Wrap(ErrCodeInternal, inner, "render failed")

	if !Is(err, ErrCodeInternal) {
		t.Error("Is should match the outermost code")
	}
	if Is(err, ErrCodeColoringExhausted) {
		t.Error("Is should not match an inner code")
	}
	if ids := GetIDs(err); len(ids) != 0 {
		t.Errorf("GetIDs = %v, want none from the outer error", ids)
	}
}

func TestAccessorsPlainErrors(t *testing.T) {
	for _, err := range []error{nil, errors.New("plain")} {
		if Is(err, ErrCodeInvalidInput) {
			t.Errorf("Is(%v) = true", err)
		}
		if c := GetCode(err); c != "" {
			t.Errorf("GetCode(%v) = %q", err, c)
		}
		if ids := GetIDs(err); ids != nil {
			t.Errorf("GetIDs(%v) = %v", err, ids)
		}
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestCodeCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{ErrCodeInvalidInput, CategoryInput},
		{ErrCodeEmptyInput, CategoryInput},
		{ErrCodeInvalidConfig, CategoryInput},
		{ErrCodeInvalidPath, CategoryInput},
		{ErrCodeGeometryDegenerate, CategoryGeometry},
		{ErrCodeUnionMultipart, CategoryGeometry},
		{ErrCodeColoringBudgetExceeded, CategoryColoring},
		{ErrCodeColoringConflicts, CategoryColoring},
		{ErrCodeNotFound, CategoryResource},
		{ErrCodeUnsupported, CategoryInternal},
		{"", CategoryInternal},
		{"SOMETHING_ELSE", CategoryInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.want {
				t.Errorf("Category() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid config", New(ErrCodeInvalidConfig, "bad seed"), true},
		{"wrapped empty input", fmt.Errorf("load: %w", New(ErrCodeEmptyInput, "no nodes")), true},
		{"coloring", New(ErrCodeColoringExhausted, "stuck"), false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserError(tt.err); got != tt.want {
				t.Errorf("IsUserError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func ExampleError_WithIDs() {
	err := New(ErrCodeColoringExhausted, "no 4-coloring").WithIDs("3", "7")
	fmt.Println(err)
	fmt.Println(GetIDs(err))
	// Output:
	// COLORING_EXHAUSTED: no 4-coloring [ids: 3,7]
	// [3 7]
}
