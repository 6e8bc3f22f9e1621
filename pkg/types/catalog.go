package types

// CatalogItem is a movie as listed by the catalog, decorated with a
// synthesized price. The JSON shape doubles as the persisted cart snapshot.
type CatalogItem struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	PosterPath    *string  `json:"poster_path"`
	BackdropPath  *string  `json:"backdrop_path"`
	PosterURL     string   `json:"poster_url,omitempty"`
	BackdropURL   string   `json:"backdrop_url,omitempty"`
	Overview      string   `json:"overview"`
	ReleaseDate   string   `json:"release_date"`
	VoteAverage   float64  `json:"vote_average"`
	VoteCount     int      `json:"vote_count"`
	Popularity    float64  `json:"popularity"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
	GenreNames    []string `json:"genre_names,omitempty"`
	Price         Price    `json:"price"`
}

// CatalogDetails extends a catalog item with the fields only the detail
// endpoint returns.
type CatalogDetails struct {
	CatalogItem
	Genres  []Genre `json:"genres,omitempty"`
	Runtime int     `json:"runtime"`
	Status  string  `json:"status"`
	Tagline string  `json:"tagline"`
	Budget  int64   `json:"budget"`
	Revenue int64   `json:"revenue"`
}

type CatalogPage struct {
	Page         int           `json:"page"`
	Results      []CatalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
