package tmdb

import (
	"sync"

	"github.com/angelmondragon/cinecart/pkg/types"
)

// GenreCache memoizes the genre list. Reset forces the next Genres call to
// hit the API again.
type GenreCache interface {
	Get() ([]types.Genre, bool)
	Store(genres []types.Genre)
	Reset()
}

// MemoryGenreCache keeps the genre list for the life of the process.
type MemoryGenreCache struct {
	mu     sync.RWMutex
	genres []types.Genre
	loaded bool
}

func NewMemoryGenreCache() *MemoryGenreCache {
	return &MemoryGenreCache{}
}

func (c *MemoryGenreCache) Get() ([]types.Genre, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return cloneGenres(c.genres), true
}

func (c *MemoryGenreCache) Store(genres []types.Genre) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genres = cloneGenres(genres)
	c.loaded = true
}

func (c *MemoryGenreCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genres = nil
	c.loaded = false
}

func cloneGenres(genres []types.Genre) []types.Genre {
	out := make([]types.Genre, len(genres))
	copy(out, genres)
	return out
}
