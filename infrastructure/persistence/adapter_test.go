package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"

	"metacore/domain"
	"metacore/infrastructure/store"
)

func newTestAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, redismock.ClientMock) {
	t.Helper()
	mockDB, sqlMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	sqlxDB := sqlx.NewDb(mockDB, "postgres")

	redisClient, redisMock := redismock.NewClientMock()

	adapter := &Adapter{
		db:             store.NewPostgresFromDB(sqlxDB),
		cache:          store.NewCacheFromClient(redisClient, 10*time.Minute),
		breaker:        store.NewBreaker("test"),
		limiter:        store.NewRetryLimiter(1000, 10),
		currentVersion: "1.2.0",
	}
	return adapter, sqlMock, redisMock
}

func TestAdapterLoadCacheHit(t *testing.T) {
	adapter, _, redisMock := newTestAdapter(t)
	rec := domain.Record{TestID: "athlete-1", Result: domain.AnalysisResult{AlgorithmVersion: "1.2.0"}}
	payload, _ := json.Marshal(rec)
	redisMock.ExpectGet("metacore:record:athlete-1").SetVal(string(payload))

	got, found, err := adapter.Load(context.Background(), "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected a cache hit")
	}
	if got.TestID != "athlete-1" {
		t.Errorf("expected test id athlete-1, got %v", got.TestID)
	}
}

func TestAdapterLoadCacheStaleVersionReturnsPersistenceConflict(t *testing.T) {
	adapter, _, redisMock := newTestAdapter(t)
	rec := domain.Record{TestID: "athlete-1", Result: domain.AnalysisResult{AlgorithmVersion: "0.9.0"}}
	payload, _ := json.Marshal(rec)
	redisMock.ExpectGet("metacore:record:athlete-1").SetVal(string(payload))

	_, found, err := adapter.Load(context.Background(), "athlete-1")
	if found {
		t.Errorf("expected a stale algorithm_version to be treated as not found")
	}
	if !domain.IsKind(err, domain.ErrPersistenceConflict) {
		t.Fatalf("expected ErrPersistenceConflict, got %v", err)
	}
}

func TestAdapterLoadDBFallbackOnCacheMiss(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	redisMock.ExpectGet("metacore:record:athlete-1").RedisNil()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"test_id", "algorithm_version", "result_json", "created_at", "updated_at"}).
		AddRow("athlete-1", "1.2.0", []byte(`{"AlgorithmVersion":"1.2.0"}`), now, now)
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WithArgs("athlete-1").
		WillReturnRows(rows)
	redisMock.Regexp().ExpectSet("metacore:record:athlete-1", `.*`, 10*time.Minute).SetVal("OK")

	got, found, err := adapter.Load(context.Background(), "athlete-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected record found via DB fallback")
	}
	if got.TestID != "athlete-1" {
		t.Errorf("expected test id athlete-1, got %v", got.TestID)
	}
}

func TestAdapterLoadDBStaleVersionReturnsPersistenceConflict(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	redisMock.ExpectGet("metacore:record:athlete-1").RedisNil()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"test_id", "algorithm_version", "result_json", "created_at", "updated_at"}).
		AddRow("athlete-1", "0.9.0", []byte(`{"AlgorithmVersion":"0.9.0"}`), now, now)
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WithArgs("athlete-1").
		WillReturnRows(rows)

	_, found, err := adapter.Load(context.Background(), "athlete-1")
	if found {
		t.Errorf("expected a stale algorithm_version to be treated as not found")
	}
	if !domain.IsKind(err, domain.ErrPersistenceConflict) {
		t.Fatalf("expected ErrPersistenceConflict, got %v", err)
	}
}

func TestAdapterLoadStoreFailureReturnsStoreUnavailable(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	redisMock.ExpectGet("metacore:record:athlete-1").RedisNil()
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WithArgs("athlete-1").
		WillReturnError(context.DeadlineExceeded)

	_, found, err := adapter.Load(context.Background(), "athlete-1")
	if found {
		t.Errorf("expected not found on a store failure")
	}
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAdapterLoadNotFoundAnywhere(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	redisMock.ExpectGet("metacore:record:missing").RedisNil()
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"test_id", "algorithm_version", "result_json", "created_at", "updated_at"}))

	_, found, err := adapter.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Errorf("expected not found")
	}
}

func TestAdapterSaveGeneratesTestIDWhenEmpty(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	sqlMock.MatchExpectationsInOrder(false)
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WillReturnError(context.DeadlineExceeded)
	sqlMock.ExpectExec("INSERT INTO metacore_records").WillReturnResult(sqlmock.NewResult(1, 1))
	redisMock.Regexp().ExpectSet(`metacore:record:.+`, `.*`, 10*time.Minute).SetVal("OK")

	rec, err := adapter.Save(context.Background(), "", domain.AnalysisResult{AlgorithmVersion: "1.2.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TestID == "" {
		t.Errorf("expected a generated test id")
	}
}

func TestAdapterDefaultOrStoredFallsBackToDefault(t *testing.T) {
	adapter, sqlMock, redisMock := newTestAdapter(t)
	redisMock.ExpectGet("metacore:record:missing").RedisNil()
	sqlMock.ExpectQuery("SELECT test_id, algorithm_version, result_json, created_at, updated_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"test_id", "algorithm_version", "result_json", "created_at", "updated_at"}))

	cfg, rec, isPersisted := adapter.DefaultOrStored(context.Background(), "missing")
	if isPersisted {
		t.Errorf("expected isPersisted=false")
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
	if cfg != domain.DefaultConfig() {
		t.Errorf("expected default config")
	}
}
