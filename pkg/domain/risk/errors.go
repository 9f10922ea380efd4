package risk

import "errors"

// Domain errors for risk analysis.
var (
	// ErrEmptyDocument indicates the document has no text after trimming.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrDocumentTooShort indicates the document is below the minimum analysable length.
	ErrDocumentTooShort = errors.New("document is too short")

	// ErrDocumentTooLong indicates the document exceeds the maximum analysable length.
	ErrDocumentTooLong = errors.New("document is too long")

	// ErrInvalidFinding indicates a finding violates its invariants.
	ErrInvalidFinding = errors.New("invalid finding")

	// ErrSimilarityUnavailable indicates the similarity collaborator could not be reached.
	ErrSimilarityUnavailable = errors.New("similarity search unavailable")

	// ErrPatternLibrary indicates the pattern library failed to load or validate.
	ErrPatternLibrary = errors.New("invalid pattern library")
)

// ValidationError rejects input before any analysis runs.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidFindingError describes which finding broke an invariant.
type InvalidFindingError struct {
	FindingID string
	Reason    string
}

func (e *InvalidFindingError) Error() string {
	return "invalid finding " + e.FindingID + ": " + e.Reason
}

// Is allows errors.Is to match ErrInvalidFinding.
func (e *InvalidFindingError) Is(target error) bool {
	return target == ErrInvalidFinding
}

// AnalysisError reports an unexpected failure inside one pipeline component.
type AnalysisError struct {
	Component string
	Err       error
}

func (e *AnalysisError) Error() string {
	return e.Component + " analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
