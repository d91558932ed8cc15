// =============================================================================
// Sweepstakes Prefill Generator - Layout Validation
// =============================================================================
//
// This module validates the column layout of a seed (prefill) file before any
// data line is read. A seed file either uses the default 9-column layout or
// declares its own column order with an !!Order!! directive. A declared order
// is rejected when:
//   - a functionally required column (CALL, SECT, CK, PREC/EXCH1) is absent
//   - a known column is declared more than once
//
// ERROR HANDLING:
//   - Every problem is collected, not only the first one
//   - Each error names the offending column and its position
//   - A rejected layout fails the seed load only; the run continues
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// ErrInvalidLayout is matched by every layout ValidationError via errors.Is.
var ErrInvalidLayout = errors.New("invalid seed layout")

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single layout problem.
type ValidationError struct {
	// Field is the canonical name of the column concerned.
	Field string

	// Rule is the violated rule: "required" or "unique".
	Rule string

	// Message is a human-readable description.
	Message string

	// Position is the 1-based column position in the declared order, or 0
	// when the column is missing altogether.
	Position int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("seed layout: column %d (%s): %s", e.Position, e.Field, e.Message)
	}
	return fmt.Sprintf("seed layout: %s: %s", e.Field, e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidLayout
}

// =============================================================================
// LAYOUT VALIDATION
// =============================================================================

// ValidateLayout checks a declared seed column order.
//
// PARAMETERS:
//   - columns: The resolved columns, one per declared position.
//
// RETURNS:
//   - nil if the layout is usable.
//   - An error joining every ValidationError otherwise.
func ValidateLayout(columns []types.Column) error {
	var problems []*ValidationError

	seen := make(map[types.Column]int, len(columns))
	for i, col := range columns {
		if col == types.ColumnUnknown {
			continue
		}
		if first, dup := seen[col]; dup {
			problems = append(problems, &ValidationError{
				Field:    col.String(),
				Rule:     "unique",
				Message:  fmt.Sprintf("already declared at column %d", first),
				Position: i + 1,
			})
			continue
		}
		seen[col] = i + 1
	}

	for _, col := range types.RequiredColumns() {
		if _, ok := seen[col]; !ok {
			problems = append(problems, &ValidationError{
				Field:   col.String(),
				Rule:    "required",
				Message: "required column is not declared",
			})
		}
	}

	if len(problems) == 0 {
		return nil
	}

	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders the validation errors contained in err, one per line.
func FormatErrors(err error) string {
	if err == nil {
		return "No validation errors."
	}

	var problems []*ValidationError
	collect(err, &problems)
	if len(problems) == 0 {
		return err.Error()
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Seed layout rejected with %d error(s):\n", len(problems))
	for i, p := range problems {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, p.Error())
	}
	return builder.String()
}

// Errors extracts the individual ValidationErrors from an error returned by
// ValidateLayout.
func Errors(err error) []*ValidationError {
	var problems []*ValidationError
	collect(err, &problems)
	return problems
}

func collect(err error, out *[]*ValidationError) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collect(e, out)
		}
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		*out = append(*out, ve)
	}
}
