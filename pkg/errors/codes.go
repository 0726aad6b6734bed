package errors

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeEmptyInput    Code = "EMPTY_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Geometry codes are recovered locally and surface as warnings.
	ErrCodeGeometryDegenerate Code = "GEOMETRY_DEGENERATE"
	ErrCodeUnionFailure       Code = "UNION_FAILURE"
	ErrCodeUnionMultipart     Code = "UNION_MULTIPART"

	ErrCodeColoringExhausted      Code = "COLORING_EXHAUSTED"
	ErrCodeColoringBudgetExceeded Code = "COLORING_BUDGET_EXCEEDED"
	ErrCodeColoringConflicts      Code = "COLORING_CONFLICTS"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category groups codes by the stage that raises them.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryGeometry Category = "geometry"
	CategoryColoring Category = "coloring"
	CategoryResource Category = "resource"
	CategoryInternal Category = "internal"
)

// Category returns the category of c. Unknown codes are internal.
func (c Code) Category() Category {
	switch c {
	case ErrCodeInvalidInput, ErrCodeEmptyInput, ErrCodeInvalidConfig, ErrCodeInvalidPath:
		return CategoryInput
	case ErrCodeGeometryDegenerate, ErrCodeUnionFailure, ErrCodeUnionMultipart:
		return CategoryGeometry
	case ErrCodeColoringExhausted, ErrCodeColoringBudgetExceeded, ErrCodeColoringConflicts:
		return CategoryColoring
	case ErrCodeNotFound:
		return CategoryResource
	}
	return CategoryInternal
}

// IsUserError reports whether err was caused by the caller's input or
// configuration rather than by graphmap itself.
func IsUserError(err error) bool {
	return GetCode(err).Category() == CategoryInput
}
