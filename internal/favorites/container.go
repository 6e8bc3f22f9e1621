package favorites

import (
	"context"
	"encoding/json"
	"slices"

	pkgerrors "github.com/angelmondragon/cinecart/pkg/errors"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/storage"
)

// StorageKey is where favorites are persisted, as a JSON array of movie ids.
const StorageKey = "movieFavorites"

// Options tunes hydration.
type Options struct {
	// RecoverCorrupt resets unparsable stored favorites instead of failing.
	RecoverCorrupt bool
}

// Favorites is an ordered, duplicate-free set of movie ids.
type Favorites struct {
	store storage.Store
	logg  *logger.Logger
	ids   []int64
}

// Load hydrates favorites from store. A stored value that does not parse is
// returned as a STATE_CONFLICT error unless opts.RecoverCorrupt is set.
func Load(ctx context.Context, store storage.Store, logg *logger.Logger, opts Options) (*Favorites, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	f := &Favorites{store: store, logg: logg, ids: []int64{}}
	ctx = logg.WithField(ctx, "storage_key", StorageKey)

	raw, found, err := store.Get(ctx, StorageKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not read favorites, please try again")
	}
	if !found {
		return f, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		if !opts.RecoverCorrupt {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "favorites storage corrupted")
		}
		logg.Error(ctx, "stored favorites are corrupted, resetting", err)
		if rmErr := store.Remove(ctx, StorageKey); rmErr != nil {
			logg.Error(ctx, "failed to clear stored favorites", rmErr)
		}
		return f, nil
	}

	deduped := dedupe(ids)
	f.ids = deduped
	if len(deduped) != len(ids) {
		logg.Warn(ctx, "removing duplicate favorites")
		if err := f.persist(ctx); err != nil {
			logg.Error(ctx, "failed to write deduplicated favorites", err)
		}
	}
	return f, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Toggle removes id when present, keeping the order of the rest, or appends it.
// It reports whether id is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, id int64) (bool, error) {
	idx := slices.Index(f.ids, id)
	added := idx < 0
	if added {
		f.ids = append(f.ids, id)
	} else {
		f.ids = slices.Delete(f.ids, idx, idx+1)
	}
	if err := f.persist(ctx); err != nil {
		return false, err
	}
	return added, nil
}

func (f *Favorites) Contains(id int64) bool {
	return slices.Contains(f.ids, id)
}

// IDs returns a copy of the favorite ids in insertion order.
func (f *Favorites) IDs() []int64 {
	return slices.Clone(f.ids)
}

func (f *Favorites) persist(ctx context.Context) error {
	payload, err := json.Marshal(f.ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode favorites")
	}
	if err := f.store.Set(ctx, StorageKey, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save favorites, please try again")
	}
	return nil
}
