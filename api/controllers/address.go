package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cinecart/api/responses"
	"github.com/angelmondragon/cinecart/internal/address"
	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
)

// addressCacheControl lets the browser reuse a resolved CEP for an hour.
const addressCacheControl = "private, max-age=3600"

// AddressLookup resolves a CEP path segment such as 01310-100 or 01310100.
func AddressLookup(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		cep := strings.TrimSpace(chi.URLParam(r, "cep"))
		if cep == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cep is required"))
			return
		}

		addr, err := svc.Resolve(logg.WithField(ctx, "cep", cep), cep)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Cache-Control", addressCacheControl)
		responses.WriteSuccess(w, addr)
	}
}
