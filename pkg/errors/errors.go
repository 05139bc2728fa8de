package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrApplicationNotFound    = errors.New("application not found")
	ErrInvalidTransition      = errors.New("transition not allowed from current status")
	ErrValidationFailed       = errors.New("validation failed")
	ErrApplicationNotEditable = errors.New("application is not editable")
	ErrCollateralUnavailable  = errors.New("collateral is not available")
	ErrInsufficientCollateral = errors.New("linked collateral does not cover the required ratio")
	ErrInvalidOverride        = errors.New("override value out of product bounds")
	ErrUnresolvedFrequency    = errors.New("no payment frequency resolvable")
	ErrCalendarUnavailable    = errors.New("business calendar unavailable")
	ErrConcurrentModification = errors.New("application modified concurrently")
	ErrProductNotFound        = errors.New("loan product not found")
	ErrCollateralLinkNotFound = errors.New("collateral link not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeApplicationNotFound    = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeApplicationNotEditable = "APPLICATION_NOT_EDITABLE"
	ErrCodeCollateralUnavailable  = "COLLATERAL_UNAVAILABLE"
	ErrCodeInsufficientCollateral = "INSUFFICIENT_COLLATERAL"
	ErrCodeInvalidOverride        = "INVALID_OVERRIDE"
	ErrCodeUnresolvedFrequency    = "UNRESOLVED_FREQUENCY"
	ErrCodeCalendarUnavailable    = "CALENDAR_UNAVAILABLE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeCollateralLinkNotFound = "COLLATERAL_LINK_NOT_FOUND"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
)

// Wrap common errors with business context

func WrapApplicationNotFound(applicationID string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Application with ID %s not found", applicationID),
		ErrApplicationNotFound,
	)
}

func WrapInvalidTransition(applicationID, currentStatus, operation string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Operation %s is not allowed for application %s in status %s", operation, applicationID, currentStatus),
		ErrInvalidTransition,
	)
}

func WrapValidationFailed(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidationFailed,
		detail,
		ErrValidationFailed,
	)
}

func WrapApplicationNotEditable(applicationID, currentStatus string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotEditable,
		fmt.Sprintf("Application %s cannot be edited in status %s", applicationID, currentStatus),
		ErrApplicationNotEditable,
	)
}

func WrapCollateralUnavailable(collateralID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollateralUnavailable,
		fmt.Sprintf("Collateral %s has status %s, expected AVAILABLE", collateralID, status),
		ErrCollateralUnavailable,
	)
}

func WrapInsufficientCollateral(required, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientCollateral,
		fmt.Sprintf("Total coverage %s is below the required %s", actual, required),
		ErrInsufficientCollateral,
	)
}

func WrapInvalidOverride(field, detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidOverride,
		fmt.Sprintf("Override for %s is invalid: %s", field, detail),
		ErrInvalidOverride,
	)
}

func WrapUnresolvedFrequency() *BusinessError {
	return NewBusinessError(
		ErrCodeUnresolvedFrequency,
		"No payment frequency resolvable from override, application or product",
		ErrUnresolvedFrequency,
	)
}

func WrapCalendarUnavailable(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCalendarUnavailable,
		"Business calendar adjuster failed",
		errors.Join(ErrCalendarUnavailable, err),
	)
}

func WrapConcurrentModification(applicationID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("Application %s was modified by a concurrent request", applicationID),
		ErrConcurrentModification,
	)
}

func WrapProductNotFound(productID string) *BusinessError {
	return NewBusinessError(
		ErrCodeProductNotFound,
		fmt.Sprintf("Loan product with ID %s not found", productID),
		ErrProductNotFound,
	)
}

func WrapCollateralLinkNotFound(linkID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCollateralLinkNotFound,
		fmt.Sprintf("Collateral link with ID %s not found", linkID),
		ErrCollateralLinkNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
