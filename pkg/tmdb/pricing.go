package tmdb

import (
	"math"
	"strings"

	"github.com/angelmondragon/cinecart/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	placeholderImage = "/placeholder-movie.jpg"
	defaultImageSize = "w500"
)

var (
	basePrice       = decimal.RequireFromString("9.90")
	priceSpread     = decimal.RequireFromString("40.00")
	popularityScale = 100.0
)

// Price synthesizes a sale price between 9.90 and 49.90 from popularity,
// saturating at popularity 100.
func Price(popularity float64) types.Price {
	if math.IsNaN(popularity) {
		return types.Price(math.NaN())
	}
	ratio := math.Min(popularity/popularityScale, 1)
	if math.IsInf(ratio, -1) {
		return types.Price(math.Inf(-1))
	}
	price := basePrice.Add(priceSpread.Mul(decimal.NewFromFloat(ratio))).Round(2)
	f, _ := price.Float64()
	return types.Price(f)
}

// ImageURL joins an image path with the CDN base and size, falling back to
// the placeholder when the movie has no image.
func ImageURL(base string, path *string, size string) string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return placeholderImage
	}
	if size == "" {
		size = defaultImageSize
	}
	return strings.TrimRight(base, "/") + "/" + size + *path
}

// GenreNames maps genre ids to names, keeping order and dropping unknown ids.
func GenreNames(ids []int, genres []types.Genre) []string {
	if len(ids) == 0 {
		return []string{}
	}
	byID := make(map[int]string, len(genres))
	for _, g := range genres {
		if _, seen := byID[g.ID]; !seen {
			byID[g.ID] = g.Name
		}
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
