package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/djlord-it/cronpreview/internal/circuitbreaker"
	"github.com/djlord-it/cronpreview/internal/domain"
	"github.com/djlord-it/cronpreview/internal/testutil"
)

const testAddr = "localhost:6379"

// fakeClient is an in-memory stand-in for *redis.Client.
type fakeClient struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failing error
	gets    int
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.failing != nil {
		return redis.NewStringResult("", f.failing)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Ping(ctx context.Context) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	return redis.NewStatusResult("PONG", nil)
}

func samplePreview() domain.SchedulePreview {
	return domain.SchedulePreview{
		Expression:  "0 9 * * 1-5",
		Timezone:    "UTC",
		Description: "At 9:00 AM, Monday through Friday (UTC)",
		Executions: []time.Time{
			time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC),
		},
		Formatted: []string{
			"Monday, January 15, 2024 at 9:00 AM UTC",
			"Tuesday, January 16, 2024 at 9:00 AM UTC",
		},
	}
}

func TestRedisCache_SetThenGet(t *testing.T) {
	ctx := testutil.TestContext(t)
	fc := newFakeClient()
	c := NewRedisCache(fc, circuitbreaker.New(3, time.Minute), testAddr, 2*time.Minute)

	key := Key("0 9 * * 1-5", "UTC", 2, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err := c.Set(ctx, key, samplePreview()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := fc.ttls[key]; got != 2*time.Minute {
		t.Errorf("ttl = %v, want 2m", got)
	}

	got, found, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	want := samplePreview()
	if got.Description != want.Description || len(got.Executions) != len(want.Executions) {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}
	for i := range want.Executions {
		if !got.Executions[i].Equal(want.Executions[i]) {
			t.Errorf("Executions[%d] = %v, want %v", i, got.Executions[i], want.Executions[i])
		}
	}
}

func TestRedisCache_Miss(t *testing.T) {
	c := NewRedisCache(newFakeClient(), circuitbreaker.New(3, time.Minute), testAddr, time.Minute)

	_, found, err := c.Get(testutil.TestContext(t), "cp:v1:missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss")
	}
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	fc := newFakeClient()
	fc.data["cp:v1:bad"] = "{not json"
	c := NewRedisCache(fc, circuitbreaker.New(3, time.Minute), testAddr, time.Minute)

	if _, _, err := c.Get(testutil.TestContext(t), "cp:v1:bad"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisCache_BreakerOpensOnFailures(t *testing.T) {
	ctx := testutil.TestContext(t)
	fc := newFakeClient()
	fc.failing = errors.New("connection refused")
	breaker := circuitbreaker.New(2, time.Minute)
	c := NewRedisCache(fc, breaker, testAddr, time.Minute)

	for i := 0; i < 2; i++ {
		if _, _, err := c.Get(ctx, "cp:v1:k"); err == nil {
			t.Fatalf("Get %d: expected redis error", i)
		}
	}
	if fc.gets != 2 {
		t.Fatalf("gets = %d, want 2", fc.gets)
	}

	_, _, err := c.Get(ctx, "cp:v1:k")
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if fc.gets != 2 {
		t.Errorf("open breaker still reached redis: gets = %d", fc.gets)
	}

	if err := c.Set(ctx, "cp:v1:k", samplePreview()); !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("Set error = %v, want ErrCircuitOpen", err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	fc := newFakeClient()
	c := NewRedisCache(fc, circuitbreaker.New(3, time.Minute), testAddr, time.Minute)
	if err := c.Ping(testutil.TestContext(t)); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	fc.failing = errors.New("i/o timeout")
	if err := c.Ping(testutil.TestContext(t)); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestKey(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	k := Key("0 9 * * *", "UTC", 5, base)
	if !strings.HasPrefix(k, keyPrefix) {
		t.Errorf("Key() = %q, want prefix %q", k, keyPrefix)
	}
	if len(k) != len(keyPrefix)+64 {
		t.Errorf("Key() length = %d, want %d", len(k), len(keyPrefix)+64)
	}

	tests := []struct {
		name  string
		other string
		same  bool
	}{
		{"same minute", Key("0 9 * * *", "UTC", 5, base.Add(45*time.Second)), true},
		{"same instant other zone", Key("0 9 * * *", "UTC", 5, base.In(time.FixedZone("X", 3600))), true},
		{"next minute", Key("0 9 * * *", "UTC", 5, base.Add(time.Minute)), false},
		{"different count", Key("0 9 * * *", "UTC", 4, base), false},
		{"different timezone", Key("0 9 * * *", "Asia/Tokyo", 5, base), false},
		{"different expression", Key("0 10 * * *", "UTC", 5, base), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.other == k; got != tt.same {
				t.Errorf("keys equal = %v, want %v", got, tt.same)
			}
		})
	}
}
