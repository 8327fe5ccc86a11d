package core

import (
	"fmt"
	"strings"

	apperrors "godesign/internal/errors"
)

// Domain errors - centralized error definitions. Each is an AppError so that
// callers can match either the sentinel (errors.Is) or the code.
var (
	// Validation errors
	ErrPopulationNotDeclared = apperrors.ValidationError(
		"population not declared: use DeclarePopulation to declare a population")
	ErrInvalidPopulationLength = apperrors.ValidationError("invalid population length")
	ErrEmptyOutcomes           = apperrors.ValidationError("potential outcomes input has length 0")
	ErrInvalidDrawRequest      = apperrors.ValidationError("invalid draw request")
	ErrDuplicateVariable       = apperrors.ValidationError("duplicate variable name")
	ErrEmptyGenerators         = apperrors.ValidationError("generator set has no generators")

	// Type errors
	ErrInvalidType = apperrors.TypeError("invalid type")
)

// NewPopulationLengthError reports a population pair of the wrong length.
func NewPopulationLengthError(length int) error {
	return &apperrors.AppError{
		Code:    apperrors.CodeValidationError,
		Message: fmt.Sprintf("population argument is of length %d, was expecting length 2", length),
		Cause:   ErrInvalidPopulationLength,
	}
}

// NewPopulationPairTypeError reports a population pair whose element types do not
// form (table, generator set).
func NewPopulationPairTypeError(elements []any) error {
	names := make([]string, len(elements))
	for i, e := range elements {
		names[i] = TypeName(e)
	}
	return &apperrors.AppError{
		Code: apperrors.CodeTypeError,
		Message: fmt.Sprintf("population argument collection is of types (%s), was expecting (table, generator set)",
			strings.Join(names, ", ")),
		Cause: ErrInvalidType,
	}
}

// NewPopulationTypeError reports a population argument of an unsupported type.
func NewPopulationTypeError(v any) error {
	return &apperrors.AppError{
		Code: apperrors.CodeTypeError,
		Message: fmt.Sprintf("population argument expects a table, a generator set, or a pair with one table "+
			"and one generator set; received an object of type %s", TypeName(v)),
		Cause: ErrInvalidType,
	}
}

// NewOutcomeTypeError reports a formula of the wrong type.
func NewOutcomeTypeError(v any) error {
	return &apperrors.AppError{
		Code:    apperrors.CodeTypeError,
		Message: fmt.Sprintf("potential outcomes argument was of type %s, was expecting type string", TypeName(v)),
		Cause:   ErrInvalidType,
	}
}

// NewDrawRequestError reports an unusable n/frac combination.
func NewDrawRequestError(reason string) error {
	return &apperrors.AppError{
		Code:    apperrors.CodeValidationError,
		Message: "invalid draw request: " + reason,
		Cause:   ErrInvalidDrawRequest,
	}
}

// TypeName returns the Go type name used in type error messages.
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
