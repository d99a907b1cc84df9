package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAquatelError_Error(t *testing.T) {
	err := New(ErrCategoryDatabase, CodeConnectFailed, "connect failed")
	expected := "[DATABASE:CONNECT_FAILED] connect failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestAquatelError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryDatabase, CodeConnectFailed, "connect failed", cause)
	expected := "[DATABASE:CONNECT_FAILED] connect failed: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestAquatelError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryWallet, CodeFetchFailed, "fetch", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestAquatelError_Is(t *testing.T) {
	err1 := New(ErrCategoryWallet, CodeFetchFailed, "first")
	err2 := New(ErrCategoryWallet, CodeFetchFailed, "second")
	err3 := New(ErrCategoryWallet, CodeStageFailed, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryStorage, CodeDownloadFailed, true},
		{ErrCategoryStorage, CodeObjectNotFound, false},
		{ErrCategoryWallet, CodeFetchFailed, true},
		{ErrCategoryWallet, CodeStageFailed, false},
		{ErrCategoryWallet, CodeArtifactMissing, false},
		{ErrCategoryDatabase, CodeConnectFailed, true},
		{ErrCategoryDatabase, CodeInsertFailed, true},
		{ErrCategoryDatabase, CodeCommitFailed, true},
		{ErrCategoryDatabase, CodeSchemaFailed, false},
		{ErrCategoryConfig, CodeInvalidConfig, false},
		{ErrCategoryJob, CodeUnexpected, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestIsRetryable_NonAquatelError(t *testing.T) {
	if IsRetryable(fmt.Errorf("plain error")) {
		t.Error("plain errors should not be retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
}

func TestNewFetchError(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := NewFetchError("ewallet.pem", cause)

	if GetCategory(err) != ErrCategoryWallet {
		t.Errorf("category = %s, want WALLET", GetCategory(err))
	}
	if GetCode(err) != CodeFetchFailed {
		t.Errorf("code = %s, want FETCH_FAILED", GetCode(err))
	}
	if !IsRetryable(err) {
		t.Error("fetch errors should be retryable")
	}
	if got := FailedArtifact(err); got != "ewallet.pem" {
		t.Errorf("FailedArtifact = %q, want %q", got, "ewallet.pem")
	}
}

func TestFailedArtifact_NoDetails(t *testing.T) {
	if got := FailedArtifact(fmt.Errorf("plain")); got != "" {
		t.Errorf("expected empty artifact for plain error, got %q", got)
	}
	if got := FailedArtifact(New(ErrCategoryWallet, CodeFetchFailed, "no details")); got != "" {
		t.Errorf("expected empty artifact when no details, got %q", got)
	}
}

func TestFailedArtifact_Wrapped(t *testing.T) {
	inner := NewFetchError("tnsnames.ora", fmt.Errorf("503"))
	outer := fmt.Errorf("run aborted: %w", inner)
	if got := FailedArtifact(outer); got != "tnsnames.ora" {
		t.Errorf("FailedArtifact through wrap = %q, want %q", got, "tnsnames.ora")
	}
}
