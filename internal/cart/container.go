package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/storage"
	"github.com/angelmondragon/cinecart/pkg/types"
	"github.com/shopspring/decimal"
)

// StorageKey is where the cart is persisted, as a JSON array of entries.
const StorageKey = "movieCart"

// Entry is one cart line. Quantity is always at least 1.
type Entry struct {
	Item     types.CatalogItem `json:"item"`
	Quantity int               `json:"quantity"`
}

// Cart is a write-through cart bound to one store.
type Cart struct {
	store   storage.Store
	logg    *logger.Logger
	entries []Entry
}

// Load hydrates the cart from store. Unreadable, corrupted or legacy data is
// discarded and the key reset, so Load never fails.
func Load(ctx context.Context, store storage.Store, logg *logger.Logger) *Cart {
	if logg == nil {
		logg = logger.Nop()
	}
	c := &Cart{store: store, logg: logg}
	c.entries = c.hydrate(ctx)
	if err := c.persist(ctx); err != nil {
		logg.Error(ctx, "failed to write hydrated cart", err)
	}
	return c
}

func (c *Cart) hydrate(ctx context.Context) []Entry {
	ctx = c.logg.WithField(ctx, "storage_key", StorageKey)

	raw, found, err := c.store.Get(ctx, StorageKey)
	if err != nil {
		c.logg.Error(ctx, "failed to read stored cart", err)
		c.discard(ctx)
		return []Entry{}
	}
	if !found {
		return []Entry{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		c.logg.Error(ctx, "stored cart is not valid JSON", err)
		c.discard(ctx)
		return []Entry{}
	}
	if len(elems) == 0 {
		return []Entry{}
	}

	objects := make([]map[string]json.RawMessage, len(elems))
	for i, elem := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			c.logg.Warn(c.logg.WithField(ctx, "index", i), "stored cart entry is not an object, resetting cart")
			c.discard(ctx)
			return []Entry{}
		}
		objects[i] = obj
	}

	if isLegacyShape(objects[0]) {
		c.logg.Info(ctx, "migrating legacy cart")
		c.discard(ctx)
		return []Entry{}
	}

	for i, obj := range objects {
		if !hasWrapperShape(obj) {
			c.logg.Warn(c.logg.WithField(ctx, "index", i), "stored cart entry has an invalid shape, resetting cart")
			c.discard(ctx)
			return []Entry{}
		}
	}

	entries := make([]Entry, 0, len(objects))
	for i, obj := range objects {
		entry, ok := decodeEntry(obj)
		if !ok {
			c.logg.Warn(c.logg.WithField(ctx, "index", i), "dropping invalid cart entry")
			continue
		}
		entries = mergeEntry(entries, entry)
	}
	return entries
}

// isLegacyShape matches the old format that stored bare items instead of {item, quantity}.
func isLegacyShape(obj map[string]json.RawMessage) bool {
	_, hasID := obj["id"]
	_, hasItem := obj["item"]
	return hasID && !hasItem
}

func hasWrapperShape(obj map[string]json.RawMessage) bool {
	item, hasItem := obj["item"]
	_, hasQuantity := obj["quantity"]
	if !hasItem || !hasQuantity {
		return false
	}
	trimmed := bytes.TrimSpace(item)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeEntry(obj map[string]json.RawMessage) (Entry, bool) {
	var item types.CatalogItem
	if err := json.Unmarshal(obj["item"], &item); err != nil {
		return Entry{}, false
	}
	var quantity float64
	if err := json.Unmarshal(obj["quantity"], &quantity); err != nil {
		return Entry{}, false
	}
	if quantity < 1 || quantity != math.Trunc(quantity) || quantity > math.MaxInt32 {
		return Entry{}, false
	}
	return Entry{Item: item, Quantity: int(quantity)}, true
}

// mergeEntry keeps one entry per item id, summing quantities of duplicates.
func mergeEntry(entries []Entry, entry Entry) []Entry {
	for i := range entries {
		if entries[i].Item.ID == entry.Item.ID {
			entries[i].Quantity += entry.Quantity
			return entries
		}
	}
	return append(entries, entry)
}

func (c *Cart) discard(ctx context.Context) {
	if err := c.store.Remove(ctx, StorageKey); err != nil {
		c.logg.Error(ctx, "failed to clear stored cart", err)
	}
}

// Add increments the quantity of item, inserting it with quantity 1 when absent.
func (c *Cart) Add(ctx context.Context, item types.CatalogItem) error {
	c.entries = mergeEntry(c.entries, Entry{Item: item, Quantity: 1})
	return c.persist(ctx)
}

// Remove drops the entry for id. Unknown ids are a no-op.
func (c *Cart) Remove(ctx context.Context, id int64) error {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.Item.ID != id {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	return c.persist(ctx)
}

// SetQuantity overwrites the quantity for id; n <= 0 removes the entry.
func (c *Cart) SetQuantity(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return c.Remove(ctx, id)
	}
	for i := range c.entries {
		if c.entries[i].Item.ID == id {
			c.entries[i].Quantity = n
		}
	}
	return c.persist(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.entries = []Entry{}
	return c.persist(ctx)
}

// Total sums price × quantity rounded to cents, skipping non-finite prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		if !e.Item.Price.Finite() {
			continue
		}
		total = total.Add(e.Item.Price.Decimal().Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total.Round(2)
}

// Count sums the quantities of all entries.
func (c *Cart) Count() int {
	count := 0
	for _, e := range c.entries {
		if e.Quantity > 0 {
			count += e.Quantity
		}
	}
	return count
}

// Entries returns a copy of the cart lines in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// persist re-validates entries and writes the collection back.
func (c *Cart) persist(ctx context.Context) error {
	valid := c.entries[:0]
	for _, e := range c.entries {
		if e.Quantity >= 1 {
			valid = append(valid, e)
		}
	}
	if len(valid) != len(c.entries) {
		c.logg.Warn(ctx, "removing invalid cart entries")
	}
	c.entries = valid

	payload, err := json.Marshal(c.entries)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := c.store.Set(ctx, StorageKey, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save cart, please try again")
	}
	return nil
}
