package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeAlreadyIssued, http.StatusConflict},
		{CodeAlreadyRevoked, http.StatusUnprocessableEntity},
		{CodeUnknownBatch, http.StatusNotFound},
		{CodeGenerationExhausted, http.StatusServiceUnavailable},
		{CodeRateLimit, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s) = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestGenerationExhaustedIsRetryable(t *testing.T) {
	if !MetadataFor(CodeGenerationExhausted).Retryable {
		t.Fatal("expected generation exhaustion to be retryable")
	}
	if MetadataFor(CodeAlreadyIssued).Retryable {
		t.Fatal("already issued must not be retryable")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "insert certificate")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable via errors.Is")
	}
	if err.Error() != "DEPENDENCY_ERROR: insert certificate" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeAlreadyIssued, "pair taken")
	wrapped := Wrap(CodeDependency, inner, "issue certificate")
	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("expected outermost code, got %s", typed.Code())
	}
}

func TestHasCode(t *testing.T) {
	err := New(CodeAlreadyRevoked, "terminal")
	if !HasCode(err, CodeAlreadyRevoked) {
		t.Fatal("expected HasCode match")
	}
	if HasCode(err, CodeAlreadyIssued) {
		t.Fatal("unexpected HasCode match")
	}
	if HasCode(nil, CodeAlreadyRevoked) {
		t.Fatal("nil error must not match")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad input").WithDetails(map[string]string{"field": "reason"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["field"] != "reason" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("constraint violated")
	err := Wrap(CodeAlreadyIssued, cause, "insert certificate")
	dump := Dump(err)
	if dump.Code != CodeAlreadyIssued {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
