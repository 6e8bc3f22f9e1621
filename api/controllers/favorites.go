package controllers

import (
	"net/http"

	"github.com/angelmondragon/cinecart/api/middleware"
	"github.com/angelmondragon/cinecart/api/responses"
	"github.com/angelmondragon/cinecart/api/validators"
	"github.com/angelmondragon/cinecart/internal/favorites"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
)

// FavoritesList returns the favorite movie ids for the session.
func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		view, err := svc.List(ctx, middleware.SessionIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func FavoritesToggle(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		movieID, err := validators.ParsePathID(r, "movieId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		res, err := svc.Toggle(ctx, middleware.SessionIDFromContext(ctx), movieID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
