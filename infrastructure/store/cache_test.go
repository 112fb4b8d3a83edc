package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"metacore/domain"
)

func newMockCache() (*Cache, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	return &Cache{client: client, keyPrefix: "metacore:record:", ttl: 10 * time.Minute}, mock
}

func TestCacheGetHit(t *testing.T) {
	cache, mock := newMockCache()
	rec := domain.Record{TestID: "athlete-1", Result: domain.AnalysisResult{AlgorithmVersion: "1.2.0"}}
	payload, _ := json.Marshal(rec)

	mock.ExpectGet("metacore:record:athlete-1").SetVal(string(payload))

	got, found := cache.Get(context.Background(), "athlete-1")
	if !found {
		t.Fatalf("expected cache hit")
	}
	if got.TestID != "athlete-1" {
		t.Errorf("expected test id athlete-1, got %v", got.TestID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCacheGetMiss(t *testing.T) {
	cache, mock := newMockCache()
	mock.ExpectGet("metacore:record:missing").RedisNil()

	_, found := cache.Get(context.Background(), "missing")
	if found {
		t.Errorf("expected cache miss")
	}
}

func TestCacheSet(t *testing.T) {
	cache, mock := newMockCache()
	rec := domain.Record{TestID: "athlete-1"}
	mock.Regexp().ExpectSet("metacore:record:athlete-1", `.*`, 10*time.Minute).SetVal("OK")

	if err := cache.Set(context.Background(), "athlete-1", rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	cache, mock := newMockCache()
	mock.ExpectDel("metacore:record:athlete-1").SetVal(1)

	if err := cache.Delete(context.Background(), "athlete-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCacheHealth(t *testing.T) {
	cache, mock := newMockCache()
	mock.ExpectPing().SetVal("PONG")

	if !cache.Health(context.Background()) {
		t.Errorf("expected healthy cache")
	}
}
