package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors matched against API error codes. Use errors.Is.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidSpec        = errors.New("invalid resolve spec")
	ErrValidationFailed   = errors.New("validation failed")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrAlreadyExists      = errors.New("collection already exists")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is a structured error returned by the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docref api: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the API error code to a package sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_spec":
		return ErrInvalidSpec
	case "validation_failed":
		return ErrValidationFailed
	case "collection_not_found":
		return ErrCollectionNotFound
	case "document_not_found":
		return ErrDocumentNotFound
	case "collection_already_exists":
		return ErrAlreadyExists
	case "store_unavailable":
		return ErrStoreUnavailable
	default:
		if e.StatusCode == 401 {
			return ErrUnauthorized
		}
		return ErrUnexpectedResponse
	}
}
