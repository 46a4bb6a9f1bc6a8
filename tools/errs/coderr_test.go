package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeErrorIs(t *testing.T) {
	err := ErrConflict.WithDetail("invite already accepted")
	if !errors.Is(err, ErrConflict) {
		t.Error("WithDetail must keep code identity")
	}
	if errors.Is(err, ErrGone) {
		t.Error("different codes must not match")
	}

	wrapped := WrapMsg(err, "resolve invite", "inviteID", "123")
	if !errors.Is(wrapped, ErrConflict) {
		t.Error("WrapMsg must preserve code through the chain")
	}
	if CodeOf(wrapped) != ConflictError {
		t.Errorf("CodeOf = %d, want %d", CodeOf(wrapped), ConflictError)
	}
}

func TestAsCodeError(t *testing.T) {
	ce := AsCodeError(ErrGone.WithDetail("lobby vanished"))
	if ce.Code != GoneError || ce.Detail != "lobby vanished" {
		t.Errorf("AsCodeError = %+v", ce)
	}
	// 链外的普通错误退化为内部错误
	ce = AsCodeError(fmt.Errorf("plain failure"))
	if ce.Code != ServerInternalError {
		t.Errorf("plain error code = %d, want %d", ce.Code, ServerInternalError)
	}
}
