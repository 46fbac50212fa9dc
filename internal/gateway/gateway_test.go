package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestPerformRemoteSuccess(t *testing.T) {
	fallbackRan := false
	got, err := Perform(context.Background(), zerolog.Nop(), "test",
		func(context.Context) (int, error) { return 42, nil },
		func() (int, error) { fallbackRan = true; return 0, nil },
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if fallbackRan {
		t.Fatal("fallback must not run when remote succeeds")
	}
}

func TestPerformRemoteFailureUsesFallback(t *testing.T) {
	got, err := Perform(context.Background(), zerolog.Nop(), "test",
		func(context.Context) (string, error) { return "", errors.New("connection refused") },
		func() (string, error) { return "local", nil },
		nil,
	)
	if err != nil {
		t.Fatalf("remote failure must not surface: %v", err)
	}
	if got != "local" {
		t.Fatalf("expected fallback value, got %q", got)
	}
}

func TestPerformOnSuccessOnlyAfterRemote(t *testing.T) {
	var reconciled []int

	_, err := Perform(context.Background(), zerolog.Nop(), "test",
		func(context.Context) (int, error) { return 7, nil },
		func() (int, error) { return 0, nil },
		func(v int) { reconciled = append(reconciled, v) },
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(reconciled) != 1 || reconciled[0] != 7 {
		t.Fatalf("expected onSuccess(7), got %v", reconciled)
	}

	_, err = Perform(context.Background(), zerolog.Nop(), "test",
		func(context.Context) (int, error) { return 0, errors.New("down") },
		func() (int, error) { return 1, nil },
		func(v int) { reconciled = append(reconciled, v) },
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(reconciled) != 1 {
		t.Fatal("onSuccess must not run on the fallback path")
	}
}

func TestPerformFallbackErrorPropagates(t *testing.T) {
	wantErr := errors.New("disk full")
	_, err := Perform(context.Background(), zerolog.Nop(), "test",
		func(context.Context) (int, error) { return 0, errors.New("down") },
		func() (int, error) { return 0, wantErr },
		nil,
	)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected local error to propagate, got %v", err)
	}
}
