package profileloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rgillard/planlog/internal/domain"
	"github.com/rgillard/planlog/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// ProfileLoader batches profile lookups so populating the profile references
// of a page of events costs one query instead of one per reference.
type ProfileLoader struct {
	Loader *dataloader.Loader
}

func NewProfileLoader(repo repository.ProfileRepository) *ProfileLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return []*dataloader.Result{{Error: fmt.Errorf("invalid UUID: %w", err)}}
			}
			ids[i] = id
		}

		profiles, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		profileMap := make(map[uuid.UUID]domain.Profile)
		for _, p := range profiles {
			profileMap[p.ID] = p
		}

		// Results must line up with the incoming key order. A missing
		// referent yields nil data, not an error: references are weak.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if p, ok := profileMap[id]; ok {
				results[i] = &dataloader.Result{Data: p}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &ProfileLoader{Loader: loader}
}

// Load resolves the profiles for one set of ids through the batch loader,
// silently skipping ids that no longer resolve.
func (l *ProfileLoader) Load(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}

	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = dataloader.StringKey(id.String())
	}

	thunk := l.Loader.LoadMany(ctx, keys)
	values, errs := thunk()
	if len(errs) > 0 {
		return nil, errs[0]
	}

	profiles := []domain.Profile{}
	for _, value := range values {
		if profile, ok := value.(domain.Profile); ok {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}
