package gcperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"google.golang.org/api/googleapi"
)

func apiError(code int, message string) error {
	return &googleapi.Error{Code: code, Message: message}
}

func TestClassifyStatusCodes(t *testing.T) {
	cases := []struct {
		code int
		want Kind
	}{
		{http.StatusConflict, AlreadyExists},
		{http.StatusForbidden, PermissionDenied},
		{http.StatusNotFound, NotFound},
		{http.StatusBadRequest, InvalidArgument},
		{http.StatusPreconditionFailed, FailedPrecondition},
		{http.StatusTooManyRequests, ResourceExhausted},
		{http.StatusUnauthorized, Unauthenticated},
		{http.StatusGatewayTimeout, DeadlineExceeded},
		{http.StatusRequestTimeout, DeadlineExceeded},
		{http.StatusInternalServerError, Unexpected},
	}
	for _, tc := range cases {
		ce := Classify(apiError(tc.code, "boom"))
		if ce == nil {
			t.Fatalf("code %d: got nil", tc.code)
		}
		if ce.Kind != tc.want {
			t.Errorf("code %d: kind = %s; want %s", tc.code, ce.Kind, tc.want)
		}
		if ce.Code != tc.code {
			t.Errorf("code %d: recorded code = %d", tc.code, ce.Code)
		}
		if ce.Remediation == "" {
			t.Errorf("code %d: missing remediation", tc.code)
		}
	}
}

func TestClassifyFailedPreconditionInBody(t *testing.T) {
	ce := Classify(apiError(http.StatusBadRequest, "FAILED_PRECONDITION: api not enabled"))
	if ce.Kind != FailedPrecondition {
		t.Errorf("kind = %s; want FailedPrecondition", ce.Kind)
	}
}

func TestClassifyWrappedAPIError(t *testing.T) {
	err := fmt.Errorf("create bucket: %w", apiError(http.StatusConflict, "exists"))
	ce := Classify(err)
	if ce.Kind != AlreadyExists {
		t.Errorf("kind = %s; want AlreadyExists", ce.Kind)
	}
	if !IsAlreadyExists(err) {
		t.Errorf("IsAlreadyExists = false for wrapped 409")
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	ce := Classify(fmt.Errorf("poll: %w", context.DeadlineExceeded))
	if ce.Kind != DeadlineExceeded {
		t.Errorf("kind = %s; want DeadlineExceeded", ce.Kind)
	}
	if !Retryable(ce) {
		t.Errorf("deadline errors should be retryable")
	}
}

func TestClassifyURLTimeout(t *testing.T) {
	uerr := &url.Error{Op: "Get", URL: "https://example.com", Err: timeoutErr{}}
	ce := Classify(uerr)
	if ce.Kind != DeadlineExceeded {
		t.Errorf("kind = %s; want DeadlineExceeded", ce.Kind)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyUnknownError(t *testing.T) {
	ce := Classify(errors.New("something odd"))
	if ce.Kind != Unexpected {
		t.Errorf("kind = %s; want Unexpected", ce.Kind)
	}
	if ce.Remediation == "" {
		t.Errorf("expected remediation for unexpected errors")
	}
}

func TestClassifyNil(t *testing.T) {
	if ce := Classify(nil); ce != nil {
		t.Errorf("expected nil for nil error; got %+v", ce)
	}
	if Retryable(nil) {
		t.Errorf("nil should not be retryable")
	}
}

func TestClassifyPreservesClassified(t *testing.T) {
	orig := ClassifyResource(apiError(http.StatusNotFound, "gone"), "bucket-a")
	again := Classify(fmt.Errorf("wrap: %w", orig))
	if again.Kind != NotFound || again.Resource != "bucket-a" {
		t.Errorf("reclassification changed error: %+v", again)
	}
}

func TestClassifyResourceAttachment(t *testing.T) {
	ce := ClassifyResource(apiError(http.StatusForbidden, "denied"), "projects/p/serviceAccounts/x")
	if ce.Resource != "projects/p/serviceAccounts/x" {
		t.Errorf("resource not attached: %+v", ce)
	}
	var apiErr *googleapi.Error
	if !errors.As(ce, &apiErr) {
		t.Errorf("classified error should unwrap to the original API error")
	}
}

func TestRetryableKinds(t *testing.T) {
	if !Retryable(apiError(http.StatusTooManyRequests, "quota")) {
		t.Errorf("429 should be retryable")
	}
	if Retryable(apiError(http.StatusForbidden, "denied")) {
		t.Errorf("403 should not be retryable")
	}
}
