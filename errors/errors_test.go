package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type testHandle uint64

func (h testHandle) String() string { return fmt.Sprintf("#%d", uint64(h)) }

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseSink,
				Kind:   KindInvalidHandle,
				Handle: "#3.2",
				Detail: "sink closed",
			},
			contains: []string{"[sink]", "invalid_handle", "on #3.2", "sink closed"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseForm,
				Kind:  KindLifecycleViolation,
			},
			contains: []string{"[form]", "lifecycle_violation"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseSave,
				Kind:   KindWriteFailure,
				Detail: "append rejected",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[save]", "write_failure", "append rejected", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseSave,
		Kind:  KindWriteFailure,
		Cause: cause,
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseSink, Kind: KindInvalidHandle, Detail: "x"}

	if !errors.Is(err, &Error{Phase: PhaseSink, Kind: KindInvalidHandle}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseForm, Kind: KindInvalidHandle}) {
		t.Error("different phase should not match")
	}
	if !errors.Is(err, ErrInvalidHandle) {
		t.Error("phase-less sentinel should match on kind")
	}
	if errors.Is(err, ErrAllocation) {
		t.Error("different kind should not match")
	}
	if errors.Is(err, errors.New("other")) {
		t.Error("non-structured target should not match")
	}
}

func TestError_IsThroughCause(t *testing.T) {
	alloc := AllocationFailed(PhaseSink, 1024, nil)
	err := WriteFailed(PhaseSave, alloc)

	if !errors.Is(err, ErrWriteFailure) {
		t.Error("expected write failure at top level")
	}
	if !errors.Is(err, ErrAllocation) {
		t.Error("expected allocation failure in cause chain")
	}

	var target *Error
	if !errors.As(err, &target) || target.Kind != KindWriteFailure {
		t.Fatalf("errors.As returned %v", target)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseForm, KindLifecycleViolation).
		Handle(testHandle(7)).
		Value(42).
		Cause(cause).
		Detail("info %s is bound", "x").
		Build()

	if err.Phase != PhaseForm || err.Kind != KindLifecycleViolation {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Handle != "#7" {
		t.Errorf("Handle = %q, want #7", err.Handle)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if err.Detail != "info x is bound" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("Cause not set")
	}
}

func TestBuilder_NilHandle(t *testing.T) {
	err := New(PhaseSink, KindInvalidHandle).Handle(nil).Detail("plain").Build()
	if err.Handle != "" {
		t.Errorf("Handle = %q, want empty", err.Handle)
	}
	if err.Detail != "plain" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"InvalidHandle", InvalidHandle(PhaseSink, "sink", testHandle(1)), PhaseSink, KindInvalidHandle},
		{"AllocationFailed", AllocationFailed(PhaseSink, 16, nil), PhaseSink, KindAllocation},
		{"WriteFailed", WriteFailed(PhaseSave, nil), PhaseSave, KindWriteFailure},
		{"UnboundDocument", UnboundDocument(PhaseForm, "not loaded"), PhaseForm, KindUnboundDocument},
		{"LifecycleViolation", LifecycleViolation(PhaseForm, "bound"), PhaseForm, KindLifecycleViolation},
		{"NotFound", NotFound(PhaseHost, "export", "malloc"), PhaseHost, KindNotFound},
		{"InvalidInput", InvalidInput(PhaseDocument, "empty"), PhaseDocument, KindInvalidInput},
		{"Engine", Engine(PhaseDocument, 3, "format"), PhaseDocument, KindEngine},
		{"Wrap", Wrap(PhaseHost, KindEngine, errors.New("x"), "call"), PhaseHost, KindEngine},
		{"Instantiation", Instantiation(errors.New("x")), PhaseLoad, KindInstantiation},
		{"Load", Load("compile", errors.New("x")), PhaseLoad, KindInvalidInput},
		{"Config", Config("decode", errors.New("x")), PhaseConfig, KindConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %s, want %s", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestInvalidHandle_Message(t *testing.T) {
	err := InvalidHandle(PhaseForm, "form info", testHandle(9))
	if !strings.Contains(err.Error(), "form info handle") || !strings.Contains(err.Error(), "#9") {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if InvalidHandle(PhaseForm, "form info", nil).Handle != "" {
		t.Error("nil handle should leave Handle empty")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != "" {
		t.Error("nil error should have empty kind")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("plain error should have empty kind")
	}
	wrapped := fmt.Errorf("outer: %w", LifecycleViolation(PhaseForm, "x"))
	if KindOf(wrapped) != KindLifecycleViolation {
		t.Errorf("KindOf = %s", KindOf(wrapped))
	}
}
