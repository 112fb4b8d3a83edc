// Package persistence implements the record-level load/save/delete/
// default_or_stored operations that sit between the orchestrator and
// the store+cache+breaker+limiter stack in infrastructure/store: a
// single entrypoint fanning out to cache-then-store with a circuit
// breaker in front of the slow path.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"metacore/domain"
	"metacore/infrastructure/store"
)

// Adapter ties the Postgres store, Redis cache, circuit breaker and
// rate limiter together behind the four record operations.
type Adapter struct {
	db      *store.Postgres
	cache   *store.Cache
	breaker *gobreaker.CircuitBreaker
	limiter *store.RetryLimiter

	currentVersion string
}

// NewAdapter builds an Adapter. currentVersion must match
// analysis.AlgorithmVersion so that Load can apply the version-
// invalidation rule without importing the application layer.
func NewAdapter(db *store.Postgres, cache *store.Cache, currentVersion string) *Adapter {
	return &Adapter{
		db:             db,
		cache:          cache,
		breaker:        store.NewBreaker("metacore-records"),
		limiter:        store.NewRetryLimiter(20, 5),
		currentVersion: currentVersion,
	}
}

// Load returns the stored record, or (zero, false, nil) when no record
// exists for testID at all. When a record exists but its
// AlgorithmVersion disagrees with the adapter's current version, Load
// returns (zero, false, ErrPersistenceConflict): the caller must
// recompute rather than treat this as a first-time analysis. Store/
// breaker/limiter failures are returned as ErrStoreUnavailable, a
// distinct kind from a genuine version conflict.
func (a *Adapter) Load(ctx context.Context, testID string) (domain.Record, bool, error) {
	if rec, ok := a.cache.Get(ctx, testID); ok {
		if rec.Result.AlgorithmVersion != a.currentVersion {
			log.Debug().Str("test_id", testID).Msg("cached record has stale algorithm version")
			return domain.Record{}, false, &domain.AnalysisError{
				Kind:    domain.ErrPersistenceConflict,
				Message: "cached record algorithm_version " + rec.Result.AlgorithmVersion + " != " + a.currentVersion,
			}
		}
		return rec, true, nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.Record{}, false, &domain.AnalysisError{Kind: domain.ErrStoreUnavailable, Message: err.Error()}
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		rec, found, err := a.db.Get(ctx, testID)
		return struct {
			rec   domain.Record
			found bool
		}{rec, found}, err
	})
	if err != nil {
		return domain.Record{}, false, &domain.AnalysisError{
			Kind:    domain.ErrStoreUnavailable,
			Message: err.Error(),
		}
	}

	wrapped := result.(struct {
		rec   domain.Record
		found bool
	})
	if !wrapped.found {
		return domain.Record{}, false, nil
	}
	if wrapped.rec.Result.AlgorithmVersion != a.currentVersion {
		log.Debug().Str("test_id", testID).Msg("stored record has stale algorithm version")
		return domain.Record{}, false, &domain.AnalysisError{
			Kind:    domain.ErrPersistenceConflict,
			Message: "stored record algorithm_version " + wrapped.rec.Result.AlgorithmVersion + " != " + a.currentVersion,
		}
	}

	_ = a.cache.Set(ctx, testID, wrapped.rec)
	return wrapped.rec, true, nil
}

// Save upserts the full record (config + four output series + markers +
// stats) in one commit, then refreshes the
// cache. testID is generated when the caller doesn't supply one, for
// CLI convenience.
func (a *Adapter) Save(ctx context.Context, testID string, result domain.AnalysisResult) (domain.Record, error) {
	if testID == "" {
		testID = uuid.NewString()
	}
	now := time.Now().UTC()

	existing, found, err := a.db.Get(ctx, testID)
	createdAt := now
	if err == nil && found {
		createdAt = existing.CreatedAt
	}

	rec := domain.Record{
		TestID:    testID,
		Result:    result,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.Record{}, &domain.AnalysisError{Kind: domain.ErrStoreUnavailable, Message: err.Error()}
	}
	_, err = a.breaker.Execute(func() (interface{}, error) {
		return nil, a.db.Upsert(ctx, rec)
	})
	if err != nil {
		return domain.Record{}, &domain.AnalysisError{Kind: domain.ErrStoreUnavailable, Message: err.Error()}
	}

	_ = a.cache.Set(ctx, testID, rec)
	return rec, nil
}

// Delete removes the record from both cache and store. A no-op, not an
// error, when the record doesn't exist.
func (a *Adapter) Delete(ctx context.Context, testID string) error {
	_ = a.cache.Delete(ctx, testID)
	if err := a.limiter.Wait(ctx); err != nil {
		return &domain.AnalysisError{Kind: domain.ErrStoreUnavailable, Message: err.Error()}
	}
	_, err := a.breaker.Execute(func() (interface{}, error) {
		return nil, a.db.Delete(ctx, testID)
	})
	if err != nil {
		return &domain.AnalysisError{Kind: domain.ErrStoreUnavailable, Message: err.Error()}
	}
	return nil
}

// DefaultOrStored returns the stored record's config if present and
// version-current, else the default
// config with no record. isPersisted reflects whether the returned
// config came from the store.
func (a *Adapter) DefaultOrStored(ctx context.Context, testID string) (domain.Config, *domain.Record, bool) {
	rec, ok, err := a.Load(ctx, testID)
	if err != nil || !ok {
		return domain.DefaultConfig(), nil, false
	}
	return rec.Result.Config, &rec, true
}
