package catalog

import (
	"context"
	"strings"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/pagination"
	"github.com/angelmondragon/cinecart/pkg/tmdb"
	"github.com/angelmondragon/cinecart/pkg/types"
)

const (
	posterSize   = "w500"
	backdropSize = "w1280"
)

// Source is the upstream movie catalog.
type Source interface {
	Popular(ctx context.Context, page int) (*types.CatalogPage, error)
	Search(ctx context.Context, query string, page int) (*types.CatalogPage, error)
	Details(ctx context.Context, id int64) (*types.CatalogDetails, error)
	Genres(ctx context.Context) ([]types.Genre, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Source       Source
	Logger       *logger.Logger
	ImageBaseURL string
}

// Service exposes the browsable movie catalog.
type Service interface {
	Popular(ctx context.Context, page int) (Page, error)
	Search(ctx context.Context, query string, page int) (Page, error)
	Details(ctx context.Context, id int64) (types.CatalogDetails, error)
	Genres(ctx context.Context) ([]types.Genre, error)
}

// Page is one page of catalog items plus pagination metadata.
type Page struct {
	Items      []types.CatalogItem `json:"items"`
	Pagination pagination.Meta     `json:"pagination"`
}

type service struct {
	source       Source
	logg         *logger.Logger
	imageBaseURL string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog source is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		source:       params.Source,
		logg:         logg,
		imageBaseURL: strings.TrimSpace(params.ImageBaseURL),
	}, nil
}

func (s *service) Popular(ctx context.Context, page int) (Page, error) {
	page = pagination.NormalizePage(page)
	resp, err := s.source.Popular(ctx, page)
	if err != nil {
		s.logFailure(ctx, "popular", err)
		return Page{}, err
	}
	return s.toPage(ctx, resp, page), nil
}

func (s *service) Search(ctx context.Context, query string, page int) (Page, error) {
	page = pagination.NormalizePage(page)
	resp, err := s.source.Search(ctx, query, page)
	if err != nil {
		s.logFailure(ctx, "search", err)
		return Page{}, err
	}
	return s.toPage(ctx, resp, page), nil
}

func (s *service) Details(ctx context.Context, id int64) (types.CatalogDetails, error) {
	details, err := s.source.Details(ctx, id)
	if err != nil {
		s.logFailure(s.logg.WithField(ctx, "movie_id", id), "details", err)
		return types.CatalogDetails{}, err
	}
	names := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		names = append(names, g.Name)
	}
	details.GenreNames = names
	s.decorateImages(&details.CatalogItem)
	return *details, nil
}

func (s *service) Genres(ctx context.Context) ([]types.Genre, error) {
	genres, err := s.source.Genres(ctx)
	if err != nil {
		s.logFailure(ctx, "genres", err)
		return nil, err
	}
	return genres, nil
}

// toPage decorates items with genre names; a failed genre fetch only drops the names.
func (s *service) toPage(ctx context.Context, resp *types.CatalogPage, requested int) Page {
	genres, err := s.source.Genres(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "genre list unavailable, listing without genre names")
		genres = nil
	}

	items := make([]types.CatalogItem, 0, len(resp.Results))
	for _, item := range resp.Results {
		if genres != nil {
			item.GenreNames = tmdb.GenreNames(item.GenreIDs, genres)
		}
		s.decorateImages(&item)
		items = append(items, item)
	}

	page := resp.Page
	if page <= 0 {
		page = requested
	}
	return Page{
		Items:      items,
		Pagination: pagination.NewMeta(page, resp.TotalPages, resp.TotalResults),
	}
}

func (s *service) decorateImages(item *types.CatalogItem) {
	if s.imageBaseURL == "" {
		return
	}
	item.PosterURL = tmdb.ImageURL(s.imageBaseURL, item.PosterPath, posterSize)
	item.BackdropURL = tmdb.ImageURL(s.imageBaseURL, item.BackdropPath, backdropSize)
}

func (s *service) logFailure(ctx context.Context, operation string, err error) {
	ctx = s.logg.WithField(ctx, "operation", operation)
	if pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		s.logg.Error(ctx, "catalog upstream failed", err)
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog request rejected")
}
