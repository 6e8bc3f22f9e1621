package favorites

import (
	"context"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/storage"
)

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Store   storage.Store
	Logger  *logger.Logger
	Options Options
}

// Service exposes the per-session favorites list.
type Service interface {
	List(ctx context.Context, sessionID string) (View, error)
	Toggle(ctx context.Context, sessionID string, movieID int64) (ToggleResult, error)
}

// View lists favorite movie ids in the order they were added.
type View struct {
	IDs []int64 `json:"ids"`
}

type ToggleResult struct {
	View
	MovieID  int64 `json:"movie_id"`
	Favorite bool  `json:"favorite"`
}

type service struct {
	store storage.Store
	logg  *logger.Logger
	opts  Options
	locks storage.KeyedMutex
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: params.Store, logg: logg, opts: params.Options}, nil
}

func (s *service) List(ctx context.Context, sessionID string) (View, error) {
	var view View
	err := s.withFavorites(ctx, sessionID, func(ctx context.Context, f *Favorites) error {
		view = View{IDs: f.IDs()}
		return nil
	})
	return view, err
}

func (s *service) Toggle(ctx context.Context, sessionID string, movieID int64) (ToggleResult, error) {
	if movieID <= 0 {
		return ToggleResult{}, pkgerrors.New(pkgerrors.CodeValidation, "movie id is required")
	}
	var result ToggleResult
	err := s.withFavorites(ctx, sessionID, func(ctx context.Context, f *Favorites) error {
		favorite, err := f.Toggle(ctx, movieID)
		if err != nil {
			return err
		}
		result = ToggleResult{View: View{IDs: f.IDs()}, MovieID: movieID, Favorite: favorite}
		return nil
	})
	return result, err
}

func (s *service) withFavorites(ctx context.Context, sessionID string, fn func(context.Context, *Favorites) error) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	ctx = s.logg.WithSessionID(ctx, sessionID)
	f, err := Load(ctx, storage.Scoped(s.store, sessionID), s.logg, s.opts)
	if err != nil {
		s.logg.Error(ctx, "failed to load favorites", err)
		return err
	}
	return fn(ctx, f)
}
