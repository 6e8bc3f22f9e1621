package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/metrics"
	"github.com/angelmondragon/cinecart/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL("http://tmdb.test/3"),
		WithHTTPClient(&http.Client{Transport: rt}),
	}, opts...)
	client, err := NewClient("test-key", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestPopularRequestAndPricing(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"page":2,"total_pages":10,"total_results":200,"results":[
			{"id":1,"title":"Low","popularity":0,"poster_path":null},
			{"id":2,"title":"Mid","popularity":50,"poster_path":"/mid.jpg"},
			{"id":3,"title":"High","popularity":1234.5}
		]}`), nil
	})

	page, err := client.Popular(context.Background(), 2)
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if captured.URL.Path != "/3/movie/popular" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	q := captured.URL.Query()
	if q.Get("api_key") != "test-key" || q.Get("language") != "pt-BR" || q.Get("page") != "2" {
		t.Fatalf("unexpected query %v", q)
	}
	if page.Page != 2 || page.TotalPages != 10 || len(page.Results) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
	want := []float64{9.90, 29.90, 49.90}
	for i, item := range page.Results {
		if float64(item.Price) != want[i] {
			t.Fatalf("item %d price = %v, want %v", i, item.Price, want[i])
		}
	}
	if page.Results[0].PosterPath != nil {
		t.Fatalf("expected nil poster path")
	}
}

func TestPopularFailureIsDependencyError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"status_message":"boom"}`), nil
	})

	_, err := client.Popular(context.Background(), 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if typed := pkgerrors.As(err); !strings.Contains(typed.Message(), "please try again") {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestSearchEmptyQueryFailsWithoutRequest(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", req.URL)
		return nil, nil
	})

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := client.Search(context.Background(), q, 1)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation code")
		}
	}
}

func TestSearchTrimsQueryAndDefaultsPopularity(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"page":1,"total_pages":1,"total_results":2,"results":[
			{"id":7,"title":"Unknown","popularity":0},
			{"id":8,"title":"Known","popularity":100}
		]}`), nil
	})

	page, err := client.Search(context.Background(), "  matrix ", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if captured.URL.Path != "/3/search/movie" || captured.URL.Query().Get("query") != "matrix" {
		t.Fatalf("unexpected request %s", captured.URL)
	}
	if float64(page.Results[0].Price) != 29.90 || float64(page.Results[1].Price) != 49.90 {
		t.Fatalf("unexpected prices %v %v", page.Results[0].Price, page.Results[1].Price)
	}
}

func TestSearchEmptyResultsEncodeAsList(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"page":1,"total_pages":0,"total_results":0}`), nil
	})
	page, err := client.Search(context.Background(), "zzz", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Results == nil || len(page.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", page.Results)
	}
}

func TestDetails(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/movie/603" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"id":603,"title":"Matrix","popularity":75,"runtime":136,
			"tagline":"Welcome","genres":[{"id":28,"name":"Ação"},{"id":878,"name":"Ficção científica"}]}`), nil
	})

	details, err := client.Details(context.Background(), 603)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.ID != 603 || details.Runtime != 136 || float64(details.Price) != 39.90 {
		t.Fatalf("unexpected details %+v", details)
	}
	if len(details.GenreIDs) != 2 || details.GenreIDs[1] != 878 {
		t.Fatalf("expected genre ids from genres, got %v", details.GenreIDs)
	}
}

func TestDetailsErrors(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/404") {
			return jsonResponse(http.StatusNotFound, `{"status_code":34}`), nil
		}
		return nil, errors.New("connection reset")
	})

	if _, err := client.Details(context.Background(), 0); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err := client.Details(context.Background(), 404)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if pkgerrors.As(err).Message() != "movie not found" {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
	if _, err := client.Details(context.Background(), 5); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGenresCachedAfterFirstSuccess(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.URL.Path != "/3/genre/movie/list" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"genres":[{"id":28,"name":"Ação"}]}`), nil
	})

	for i := 0; i < 3; i++ {
		genres, err := client.Genres(context.Background())
		if err != nil {
			t.Fatalf("genres: %v", err)
		}
		if len(genres) != 1 || genres[0].Name != "Ação" {
			t.Fatalf("unexpected genres %+v", genres)
		}
		genres[0].Name = "mutated"
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}

	client.genres.Reset()
	if _, err := client.Genres(context.Background()); err != nil {
		t.Fatalf("genres after reset: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after reset, got %d calls", calls)
	}
}

func TestGenresFailureIsNotCached(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errors.New("offline")
		}
		return jsonResponse(http.StatusOK, `{"genres":[]}`), nil
	})

	if _, err := client.Genres(context.Background()); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("second genres call: %v", err)
	}
	if genres == nil || len(genres) != 0 {
		t.Fatalf("expected empty genre list, got %#v", genres)
	}
}

func TestGenresConcurrentLoadsShareRequest(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return jsonResponse(http.StatusOK, `{"genres":[{"id":1,"name":"A"}]}`), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Genres(context.Background()); err != nil {
				t.Errorf("genres: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestGenresUsesInjectedCache(t *testing.T) {
	var calls int32
	cache := NewMemoryGenreCache()
	cache.Store([]types.Genre{{ID: 18, Name: "Drama"}})
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, `{"genres":[{"id":28,"name":"Ação"}]}`), nil
	}, WithGenreCache(cache))

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Drama" || atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected cached genres without a request, got %+v calls=%d", genres, calls)
	}

	cache.Reset()
	genres, err = client.Genres(context.Background())
	if err != nil {
		t.Fatalf("genres after reset: %v", err)
	}
	if len(genres) != 1 || genres[0].ID != 28 || atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a reload after reset, got %+v calls=%d", genres, calls)
	}
}

func TestGenresSharedLoadIgnoresCallerCancellation(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}
		return jsonResponse(http.StatusOK, `{"genres":[{"id":1,"name":"A"}]}`), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	genres, err := client.Genres(ctx)
	if err != nil {
		t.Fatalf("cancelled caller should still get the shared load: %v", err)
	}
	if len(genres) != 1 {
		t.Fatalf("unexpected genres %+v", genres)
	}
}

func TestClientRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"page":1,"results":[]}`), nil
	}, WithMetrics(metrics.NewUpstreamMetrics(reg)), WithLanguage("en-US"))

	if _, err := client.Popular(context.Background(), 1); err != nil {
		t.Fatalf("popular: %v", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "upstream_requests_total" || len(mf.GetMetric()) != 1 {
			continue
		}
		series := mf.GetMetric()[0]
		for _, label := range series.GetLabel() {
			if label.GetName() == "outcome" && label.GetValue() == metrics.OutcomeOK {
				found = series.GetCounter().GetValue() == 1
			}
		}
	}
	if !found {
		t.Fatal("expected one recorded upstream success")
	}
}
