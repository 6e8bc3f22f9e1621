package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/metrics"
	"github.com/angelmondragon/cinecart/pkg/types"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL                = "https://api.themoviedb.org/3"
	defaultLanguage               = "pt-BR"
	upstreamName                  = "tmdb"
	requestBodyReadLimit    int64 = 1024
	searchDefaultPopularity       = 50
)

var (
	errAPIKeyRequired = errors.New("tmdb api key is required")

	// ErrEmptyQuery is returned by Search before any request is made.
	ErrEmptyQuery = pkgerrors.New(pkgerrors.CodeValidation, "type something to search")
)

// Client wraps the TMDb v3 endpoints the storefront lists movies from.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	genres     GenreCache
	metrics    *metrics.UpstreamMetrics
	group      singleflight.Group
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the TMDb API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLanguage overrides the language sent with every request.
func WithLanguage(language string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(language)
		if trimmed != "" {
			c.language = trimmed
		}
	}
}

// WithGenreCache replaces the client's own in-memory genre cache, e.g. to
// share one cache between clients or to Reset it from outside.
func WithGenreCache(cache GenreCache) Option {
	return func(c *Client) {
		if cache != nil {
			c.genres = cache
		}
	}
}

// WithMetrics records every upstream call.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the TMDb client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		genres:     NewMemoryGenreCache(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Popular returns a page of popular movies with synthesized prices.
func (c *Client) Popular(ctx context.Context, page int) (*types.CatalogPage, error) {
	var resp types.CatalogPage
	query := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.getJSON(ctx, "popular", "movie/popular", query, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not load popular movies, please try again")
	}
	for i := range resp.Results {
		resp.Results[i].Price = Price(resp.Results[i].Popularity)
	}
	return normalizePage(&resp), nil
}

// Search returns a page of movies matching query. Items without popularity
// are priced as mid-range.
func (c *Client) Search(ctx context.Context, query string, page int) (*types.CatalogPage, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	var resp types.CatalogPage
	params := url.Values{
		"query": {trimmed},
		"page":  {strconv.Itoa(page)},
	}
	if err := c.getJSON(ctx, "search", "search/movie", params, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not search movies, please try again")
	}
	for i := range resp.Results {
		popularity := resp.Results[i].Popularity
		if popularity == 0 {
			popularity = searchDefaultPopularity
		}
		resp.Results[i].Price = Price(popularity)
	}
	return normalizePage(&resp), nil
}

// Details returns the full record of one movie.
func (c *Client) Details(ctx context.Context, id int64) (*types.CatalogDetails, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movie id is required")
	}

	var resp types.CatalogDetails
	path := "movie/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, "details", path, nil, &resp); err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "movie not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not load movie details, please try again")
	}

	resp.Price = Price(resp.Popularity)
	if len(resp.GenreIDs) == 0 && len(resp.Genres) > 0 {
		resp.GenreIDs = make([]int, 0, len(resp.Genres))
		for _, g := range resp.Genres {
			resp.GenreIDs = append(resp.GenreIDs, g.ID)
		}
	}
	return &resp, nil
}

// Genres returns the movie genre list. The first successful load is cached
// and concurrent first loads share one request. The shared request ignores
// the caller's cancellation so one aborted request cannot fail the others;
// the HTTP client timeout still bounds it.
func (c *Client) Genres(ctx context.Context) ([]types.Genre, error) {
	if cached, ok := c.genres.Get(); ok {
		return cached, nil
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("genres", func() (any, error) {
		if cached, ok := c.genres.Get(); ok {
			return cached, nil
		}
		var resp struct {
			Genres []types.Genre `json:"genres"`
		}
		if err := c.getJSON(shared, "genres", "genre/movie/list", nil, &resp); err != nil {
			return nil, err
		}
		if resp.Genres == nil {
			resp.Genres = []types.Genre{}
		}
		c.genres.Store(resp.Genres)
		return resp.Genres, nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not load genres, please try again")
	}
	return cloneGenres(v.([]types.Genre)), nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) (err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(upstreamName, operation, started, err) }()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	params := url.Values{}
	for k, v := range query {
		params[k] = v
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s?%s", trimmed, path, params.Encode())
}

func normalizePage(page *types.CatalogPage) *types.CatalogPage {
	if page.Results == nil {
		page.Results = []types.CatalogItem{}
	}
	return page
}
