package controllers

import (
	"net/http"

	"github.com/angelmondragon/cinecart/api/responses"
	"github.com/angelmondragon/cinecart/api/validators"
	"github.com/angelmondragon/cinecart/internal/catalog"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/pagination"
)

const maxSearchQueryLen = 200

// MoviesPopular lists the popular movies page.
func MoviesPopular(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, pagination.MaxPage)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.Popular(ctx, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMeta(w, resp.Items, resp.Pagination)
	}
}

// MoviesSearch runs a title search. A blank query is rejected.
func MoviesSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, pagination.MaxPage)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("query"), maxSearchQueryLen)

		resp, err := svc.Search(ctx, query, page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMeta(w, resp.Items, resp.Pagination)
	}
}

func MovieDetails(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "movieId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		details, err := svc.Details(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, details)
	}
}

func Genres(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		genres, err := svc.Genres(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"genres": genres})
	}
}
