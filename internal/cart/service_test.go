package cart

import (
	"context"
	"testing"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/storage"
	"github.com/angelmondragon/cinecart/pkg/types"
)

type stubCatalog map[int64]types.CatalogDetails

func (s stubCatalog) Details(_ context.Context, id int64) (types.CatalogDetails, error) {
	d, ok := s[id]
	if !ok {
		return types.CatalogDetails{}, pkgerrors.New(pkgerrors.CodeNotFound, "movie not found")
	}
	return d, nil
}

func newTestService(t *testing.T, store storage.Store) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store: store,
		Catalog: stubCatalog{
			603: {CatalogItem: types.CatalogItem{ID: 603, Title: "Matrix", Price: 39.90}, Runtime: 136},
			13:  {CatalogItem: types.CatalogItem{ID: 13, Title: "Forrest Gump", Price: 29.90}},
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceValidatesParams(t *testing.T) {
	if _, err := NewService(ServiceParams{Catalog: stubCatalog{}}); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := NewService(ServiceParams{Store: storage.NewMemory()}); err == nil {
		t.Fatal("expected error without catalog")
	}
}

func TestServiceCartFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemory())

	view, err := svc.AddItem(ctx, "s1", 603)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err = svc.AddItem(ctx, "s1", 13)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err = svc.SetQuantity(ctx, "s1", 603, 3)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if view.Count != 4 || view.Total != "149.60" {
		t.Fatalf("unexpected view %+v", view)
	}

	view, err = svc.RemoveItem(ctx, "s1", 13)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(view.Items) != 1 || view.Total != "119.70" {
		t.Fatalf("unexpected view after remove %+v", view)
	}

	view, err = svc.Clear(ctx, "s1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if view.Count != 0 || view.Total != "0.00" || view.Items == nil {
		t.Fatalf("unexpected view after clear %+v", view)
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemory())

	if _, err := svc.AddItem(ctx, "alice", 603); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err := svc.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Count != 0 {
		t.Fatalf("bob should have an empty cart, got %+v", view)
	}
	view, err = svc.Get(ctx, "alice")
	if err != nil || view.Count != 1 {
		t.Fatalf("alice cart should be kept, got %+v err=%v", view, err)
	}
}

func TestServiceAddItemErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemory())

	if _, err := svc.AddItem(ctx, "s1", 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.AddItem(ctx, "s1", 999); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty session, got %v", err)
	}
}
