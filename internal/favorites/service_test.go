package favorites

import (
	"context"
	"testing"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/storage"
)

func TestServiceToggleAndList(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ServiceParams{Store: storage.NewMemory()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.Toggle(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !res.Favorite || res.MovieID != 10 || len(res.IDs) != 1 {
		t.Fatalf("unexpected toggle result %+v", res)
	}
	if _, err := svc.Toggle(ctx, "s1", 20); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	view, err := svc.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(view.IDs) != 2 || view.IDs[0] != 10 || view.IDs[1] != 20 {
		t.Fatalf("unexpected ids %v", view.IDs)
	}

	other, err := svc.List(ctx, "s2")
	if err != nil {
		t.Fatalf("list other session: %v", err)
	}
	if len(other.IDs) != 0 {
		t.Fatalf("sessions must not share favorites, got %v", other.IDs)
	}
}

func TestServiceCorruptedStorage(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	if err := storage.Scoped(mem, "s1").Set(ctx, StorageKey, "oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	strict, _ := NewService(ServiceParams{Store: mem})
	if _, err := strict.List(ctx, "s1"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	lenient, _ := NewService(ServiceParams{Store: mem, Options: Options{RecoverCorrupt: true}})
	view, err := lenient.List(ctx, "s1")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(view.IDs) != 0 {
		t.Fatalf("expected empty ids, got %v", view.IDs)
	}
}

func TestServiceValidation(t *testing.T) {
	svc, _ := NewService(ServiceParams{Store: storage.NewMemory()})
	if _, err := svc.Toggle(context.Background(), "s1", 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.List(context.Background(), ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without store")
	}
}
