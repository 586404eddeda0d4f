package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func sampleResult() CachedResult {
	name := "강남 행복주택"
	region := "서울"
	minAge := 19
	maxIncome := int64(70_000_000)
	return CachedResult{
		Criteria: extraction.Criteria{
			OfferName: &name,
			Region:    &region,
			MinAge:    &minAge,
			MaxIncome: &maxIncome,
		},
		OCRQuality:    ocr.TierHigh,
		ExtractedText: "공고문 본문",
		Model:         "gemini-1.5-pro",
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	want := sampleResult()
	cache.Put(ctx, "fp-1", want)

	got, ok := cache.Get(ctx, "fp-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.OCRQuality != want.OCRQuality || got.ExtractedText != want.ExtractedText || got.Model != want.Model {
		t.Fatalf("payload mismatch: %+v", got)
	}
	if got.Criteria.OfferName == nil || *got.Criteria.OfferName != *want.Criteria.OfferName {
		t.Fatalf("offer name mismatch: %v", got.Criteria.OfferName)
	}
	if got.Criteria.MinAge == nil || *got.Criteria.MinAge != 19 {
		t.Fatalf("min age mismatch: %v", got.Criteria.MinAge)
	}
	if got.Criteria.MaxIncome == nil || *got.Criteria.MaxIncome != 70_000_000 {
		t.Fatalf("max income mismatch: %v", got.Criteria.MaxIncome)
	}
	if got.Criteria.MinIncome != nil {
		t.Fatalf("absent field must stay nil, got %v", *got.Criteria.MinIncome)
	}
}

func TestRedisCacheMissingKeyIsMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	if _, ok := cache.Get(context.Background(), "unknown"); ok {
		t.Fatal("expected miss")
	}
}

func TestRedisCacheCorruptPayloadDegradesToMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	if err := mr.Set(cacheKeyPrefix+"fp-1", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := cache.Get(context.Background(), "fp-1"); ok {
		t.Fatal("corrupt payload must read as a miss")
	}
}

func TestRedisCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "fp-1", sampleResult())
	mr.FastForward(CacheTTL + time.Hour)
	if _, ok := cache.Get(ctx, "fp-1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestRedisCacheTouchExtendsTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "fp-1", sampleResult())
	mr.FastForward(CacheTTL - time.Hour)
	cache.Touch(ctx, "fp-1")
	mr.FastForward(2 * time.Hour)

	if _, ok := cache.Get(ctx, "fp-1"); !ok {
		t.Fatal("touched entry must outlive the original TTL")
	}
}
