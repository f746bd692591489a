package fserr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := Wrap(RetCNotFound, os.ErrNotExist, "counter missing")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected %v to match ErrNotFound", err)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("did not expect %v to match ErrStorageUnavailable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the cause to be reachable through Unwrap")
	}
}

func TestErrorsIsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewError(RetCLockOperationFailed, "unlock"))
	if !errors.Is(err, ErrLockOperationFailed) {
		t.Errorf("expected wrapped error to match ErrLockOperationFailed")
	}
	if CodeOf(err) != RetCLockOperationFailed {
		t.Errorf("expected code %s, got %s", RetCLockOperationFailed, CodeOf(err))
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != RetCSuccess {
		t.Errorf("nil error should map to success")
	}
	if CodeOf(errors.New("boom")) != RetCUnknown {
		t.Errorf("foreign error should map to unknown")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(RetCStorageUnavailable, errors.New("permission denied"), "mkdir /x")
	want := "fssync (code StorageUnavailable): mkdir /x: permission denied"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
