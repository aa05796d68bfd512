package faults_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bidslite/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "dataset", "copy", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"dataset", "copy", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := faults.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if got := err.Error(); got != "i/o error: operation failed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[string]error{
		"configuration": faults.Wrap(faults.ErrConfiguration, "planner", "plan", "missing pipeline", nil),
		"validation":    faults.Wrap(faults.ErrValidation, "metadata", "read", "no rows", nil),
		"locked":        faults.Wrap(faults.ErrLocked, "dataset", "lock", "busy", nil),
		"io":            errors.New("disk gone"),
		"":              nil,
	}
	for want, err := range cases {
		if got := faults.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := faults.WithRunID(context.Background(), "abc")
	if id, ok := faults.RunIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("expected run id abc, got %q (%v)", id, ok)
	}
	if _, ok := faults.RunIDFromContext(faults.WithRunID(context.Background(), "")); ok {
		t.Fatal("expected empty run id to be ignored")
	}
	ctx = faults.WithComponent(ctx, "planner")
	if c, ok := faults.ComponentFromContext(ctx); !ok || c != "planner" {
		t.Fatalf("expected component planner, got %q", c)
	}
}
