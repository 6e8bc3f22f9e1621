package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
)

// ParseQueryInt reads an optional integer such as ?page=2, returning
// fallback when the parameter is absent.
func ParseQueryInt(r *http.Request, key string, fallback, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, invalidParam(key, "query parameter must be numeric", nil)
	case value < min || value > max:
		return 0, invalidParam(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// ParsePathID reads a positive integer route parameter such as {movieId}.
func ParsePathID(r *http.Request, key string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, key)), 10, 64)
	if err != nil || value <= 0 {
		return 0, invalidParam(key, "path parameter must be a positive integer", nil)
	}
	return value, nil
}

func invalidParam(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
