package types

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Price is a unit price in BRL. Non-finite values encode as JSON null. Null
// and any other non-number (string, bool, object, array) decode to NaN, so a
// corrupted snapshot keeps its line instead of failing the whole entry.
type Price float64

func (p Price) Finite() bool {
	f := float64(p)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Decimal returns the price rounded to cents. Callers must check Finite first.
func (p Price) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(p)).Round(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var f float64
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) || json.Unmarshal(data, &f) != nil {
		*p = Price(math.NaN())
		return nil
	}
	*p = Price(f)
	return nil
}
