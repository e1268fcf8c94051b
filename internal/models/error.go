package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrBadGateway       = "UPSTREAM_FAILURE"

	// Catalog errors
	ErrIngredientNotFound = "INGREDIENT_NOT_FOUND"
	ErrCatalogUnavailable = "CATALOG_UNAVAILABLE"

	// Constructor errors
	ErrConstructorIncomplete = "CONSTRUCTOR_INCOMPLETE"
	ErrPlacementOutOfRange   = "PLACEMENT_OUT_OF_RANGE"

	// Order errors
	ErrOrderNotFound         = "ORDER_NOT_FOUND"
	ErrSubmissionInFlight    = "ORDER_SUBMISSION_IN_FLIGHT"
	ErrOrderStatusTransition = "ORDER_STATUS_TRANSITION"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
