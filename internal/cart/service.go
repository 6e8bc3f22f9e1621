package cart

import (
	"context"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/storage"
	"github.com/angelmondragon/cinecart/pkg/types"
)

// ItemSource resolves the authoritative snapshot of a movie.
type ItemSource interface {
	Details(ctx context.Context, id int64) (types.CatalogDetails, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store   storage.Store
	Catalog ItemSource
	Logger  *logger.Logger
}

// Service exposes the per-session cart.
type Service interface {
	Get(ctx context.Context, sessionID string) (View, error)
	AddItem(ctx context.Context, sessionID string, movieID int64) (View, error)
	SetQuantity(ctx context.Context, sessionID string, movieID int64, quantity int) (View, error)
	RemoveItem(ctx context.Context, sessionID string, movieID int64) (View, error)
	Clear(ctx context.Context, sessionID string) (View, error)
}

// View is the cart as returned to clients.
type View struct {
	Items []Entry `json:"items"`
	Total string  `json:"total"`
	Count int     `json:"count"`
}

type service struct {
	store   storage.Store
	catalog ItemSource
	logg    *logger.Logger
	locks   storage.KeyedMutex
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:   params.Store,
		catalog: params.Catalog,
		logg:    logg,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	return s.withCart(ctx, sessionID, func(*Cart) error { return nil })
}

// AddItem snapshots the movie from the catalog so the stored price is the synthesized one.
func (s *service) AddItem(ctx context.Context, sessionID string, movieID int64) (View, error) {
	if movieID <= 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "movie id is required")
	}
	details, err := s.catalog.Details(ctx, movieID)
	if err != nil {
		return View{}, err
	}
	return s.withCart(ctx, sessionID, func(c *Cart) error {
		return c.Add(ctx, details.CatalogItem)
	})
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, movieID int64, quantity int) (View, error) {
	return s.withCart(ctx, sessionID, func(c *Cart) error {
		return c.SetQuantity(ctx, movieID, quantity)
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, movieID int64) (View, error) {
	return s.withCart(ctx, sessionID, func(c *Cart) error {
		return c.Remove(ctx, movieID)
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (View, error) {
	return s.withCart(ctx, sessionID, func(c *Cart) error {
		return c.Clear(ctx)
	})
}

func (s *service) withCart(ctx context.Context, sessionID string, fn func(*Cart) error) (View, error) {
	if sessionID == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	ctx = s.logg.WithSessionID(ctx, sessionID)
	c := Load(ctx, storage.Scoped(s.store, sessionID), s.logg)
	if err := fn(c); err != nil {
		s.logg.Error(ctx, "cart update failed", err)
		return View{}, err
	}
	return NewView(c), nil
}

// NewView renders the cart with its total fixed at two decimals.
func NewView(c *Cart) View {
	return View{
		Items: c.Entries(),
		Total: c.Total().StringFixed(2),
		Count: c.Count(),
	}
}
