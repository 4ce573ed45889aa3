package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidFormat, cause, "failed to decode")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	expected := "INVALID_FORMAT: failed to decode: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeProfileNotFound, "missing"))

	if !Is(err, ErrCodeProfileNotFound) {
		t.Error("Is should find code through wrapping")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if got := GetCode(err); got != ErrCodeProfileNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeProfileNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidView, "bad viewport")); got != "bad viewport" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestPanic(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*Error)
		if !ok {
			t.Fatalf("recovered %T, want *Error", r)
		}
		if err.Code != ErrCodeInvariant {
			t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvariant)
		}
	}()
	Panic("stack underflow at %d", 3)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidQuery, "x"), 400},
		{New(ErrCodeProfileNotFound, "x"), 404},
		{New(ErrCodeUnsupported, "x"), 501},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
