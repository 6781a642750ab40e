// Package gcperrors normalizes Google control-plane failures into a small
// taxonomy with remediation hints. Classification is total: any error maps
// to some kind, unknown ones to Unexpected.
package gcperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind is the taxonomy bucket a control-plane failure falls into.
type Kind string

const (
	AlreadyExists      Kind = "AlreadyExists"
	PermissionDenied   Kind = "PermissionDenied"
	NotFound           Kind = "NotFound"
	InvalidArgument    Kind = "InvalidArgument"
	FailedPrecondition Kind = "FailedPrecondition"
	DeadlineExceeded   Kind = "DeadlineExceeded"
	ResourceExhausted  Kind = "ResourceExhausted"
	Unauthenticated    Kind = "Unauthenticated"
	Unexpected         Kind = "Unexpected"
)

var remediations = map[Kind]string{
	AlreadyExists:      "Resource already exists. This is normal for idempotent operations.",
	PermissionDenied:   "Contact platform administrator to grant required IAM roles",
	NotFound:           "Verify the resource name/ID is correct",
	InvalidArgument:    "Check the request parameters and try again",
	FailedPrecondition: "Verify that prerequisite operations have completed",
	DeadlineExceeded:   "Try again. Some operations (like API enablement) can take several minutes.",
	ResourceExhausted:  "Wait and retry, or request quota increase",
	Unauthenticated:    "Verify the active credentials (gcloud auth list)",
	Unexpected:         "Contact platform administrator",
}

// ClassifiedError is the normalized form of a control-plane failure. It is
// shaped for JSON embedding in registry payloads and command output.
type ClassifiedError struct {
	Kind        Kind   `json:"kind"`
	Message     string `json:"message"`
	Code        int    `json:"code,omitempty"`
	Remediation string `json:"remediation,omitempty"`
	Resource    string `json:"resource,omitempty"`

	cause error
}

func (e *ClassifiedError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (resource %s)", e.Kind, e.Message, e.Resource)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

func newError(kind Kind, message string, code int, resource string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Kind:        kind,
		Message:     message,
		Code:        code,
		Remediation: remediations[kind],
		Resource:    resource,
		cause:       cause,
	}
}

// Classify maps any error onto the taxonomy. Returns nil for nil.
func Classify(err error) *ClassifiedError {
	return ClassifyResource(err, "")
}

// ClassifyResource is Classify with the affected resource name attached.
func ClassifyResource(err error, resource string) *ClassifiedError {
	if err == nil {
		return nil
	}

	// Already classified: keep it, filling in the resource if absent.
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		if resource != "" && ce.Resource == "" {
			out := *ce
			out.Resource = resource
			return &out
		}
		return ce
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyAPI(apiErr, err, resource)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(DeadlineExceeded, "operation timed out", 0, resource, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return newError(DeadlineExceeded, "operation timed out: "+urlErr.Err.Error(), 0, resource, err)
		}
		return newError(Unexpected, fmt.Sprintf("transport error: %v", urlErr), 0, resource, err)
	}

	return newError(Unexpected, fmt.Sprintf("unexpected %T: %v", err, err), 0, resource, err)
}

func classifyAPI(apiErr *googleapi.Error, cause error, resource string) *ClassifiedError {
	code := apiErr.Code
	switch code {
	case http.StatusConflict:
		return newError(AlreadyExists, "resource already exists", code, resource, cause)
	case http.StatusForbidden:
		return newError(PermissionDenied, "caller lacks required IAM permissions", code, resource, cause)
	case http.StatusNotFound:
		return newError(NotFound, "resource not found", code, resource, cause)
	case http.StatusBadRequest:
		// The API reports precondition failures with a 400 and a status
		// marker in the body rather than a 412.
		if mentionsFailedPrecondition(apiErr) {
			return newError(FailedPrecondition, "operation cannot be performed in the current state: "+apiErr.Message, code, resource, cause)
		}
		return newError(InvalidArgument, "invalid request parameters: "+apiErr.Message, code, resource, cause)
	case http.StatusPreconditionFailed:
		return newError(FailedPrecondition, "operation cannot be performed in the current state: "+apiErr.Message, code, resource, cause)
	case http.StatusTooManyRequests:
		return newError(ResourceExhausted, "quota or rate limit exceeded", code, resource, cause)
	case http.StatusUnauthorized:
		return newError(Unauthenticated, "authentication failed", code, resource, cause)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return newError(DeadlineExceeded, "operation timed out", code, resource, cause)
	}
	return newError(Unexpected, fmt.Sprintf("API error %d: %s", code, apiErr.Message), code, resource, cause)
}

func mentionsFailedPrecondition(apiErr *googleapi.Error) bool {
	if strings.Contains(apiErr.Message, "FAILED_PRECONDITION") {
		return true
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "failedPrecondition" {
			return true
		}
	}
	return strings.Contains(apiErr.Body, "FAILED_PRECONDITION")
}

// IsAlreadyExists reports whether the error classifies as AlreadyExists.
// Ensure-style operations treat it as success.
func IsAlreadyExists(err error) bool {
	ce := Classify(err)
	return ce != nil && ce.Kind == AlreadyExists
}

// IsNotFound reports whether the error classifies as NotFound.
func IsNotFound(err error) bool {
	ce := Classify(err)
	return ce != nil && ce.Kind == NotFound
}

// Retryable reports whether the failure is worth retrying (timeouts and
// quota exhaustion).
func Retryable(err error) bool {
	ce := Classify(err)
	if ce == nil {
		return false
	}
	return ce.Kind == DeadlineExceeded || ce.Kind == ResourceExhausted
}
