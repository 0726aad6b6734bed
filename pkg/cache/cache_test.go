package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

var errTransient = errors.New("transient")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "a", []byte(`{"version":1}`), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit || string(data) != `{"version":1}` {
		t.Fatalf("Get(a) = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if j != Hash([]byte(`{"a":1}`)) {
		t.Errorf("HashJSON = %s, want the hash of the JSON encoding", j)
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail for unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	mk1 := k.MapKey("hash123", MapKeyOpts{Seed: 42, Colors: 4})
	mk2 := k.MapKey("hash123", MapKeyOpts{Seed: 7, Colors: 4})
	mk3 := k.MapKey("hash456", MapKeyOpts{Seed: 42, Colors: 4})
	if mk1 == mk2 || mk1 == mk3 {
		t.Error("Different inputs should produce different keys")
	}
	if mk1 != k.MapKey("hash123", MapKeyOpts{Seed: 42, Colors: 4}) {
		t.Error("MapKey should be deterministic")
	}
	if !strings.HasPrefix(mk1, "map:") {
		t.Errorf("MapKey unexpected: %s", mk1)
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := MapKeyOpts{Seed: 3}
	plain := DefaultKeyer{}.MapKey("h", opts)
	tests := []struct {
		name  string
		inner Keyer
		want  string
	}{
		{"default inner", NewDefaultKeyer(), "staging:" + plain},
		{"nil inner", nil, "staging:" + plain},
		{"nested", NewScopedKeyer(nil, "tenant:"), "staging:tenant:" + plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewScopedKeyer(tt.inner, "staging:").MapKey("h", opts); got != tt.want {
				t.Errorf("MapKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	c := NewRedisCacheFromClient(client)
	defer c.Close()
	if _, hit, err := c.Get(context.Background(), "k"); err == nil || hit {
		t.Errorf("Get against unreachable server = %v, %v; want error", hit, err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want a clean miss", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheStatsAndPrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for _, k := range []string{"fresh", "short"} {
		ttl := time.Hour
		if k == "short" {
			ttl = time.Minute
		}
		if err := c.Set(ctx, k, []byte(k), ttl); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(10 * time.Minute)
	st, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 3 || st.Expired != 1 || st.Bytes == 0 {
		t.Errorf("Stats() = %+v, want 3 entries with 1 expired", st)
	}

	n, err := c.Prune()
	if err != nil || n != 1 {
		t.Fatalf("Prune() = %d, %v; want 1", n, err)
	}
	for _, k := range []string{"fresh", "forever"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Errorf("Prune removed live entry %q", k)
		}
	}
}

func TestFileCacheMissingDir(t *testing.T) {
	c := &FileCache{dir: filepath.Join(t.TempDir(), "gone"), now: time.Now}
	if st, err := c.Stats(); err != nil || st.Entries != 0 {
		t.Errorf("Stats() on a missing dir = %+v, %v", st, err)
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear() on a missing dir = %d, %v", n, err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) || !errors.Is(err, errTransient) {
		t.Errorf("Retryable(%v) = %v, should wrap and mark", errTransient, err)
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), errTransient.Error())
	}
	if IsRetryable(errors.New("permanent")) {
		t.Error("IsRetryable should be false for unmarked errors")
	}
}

func TestBackoffRetry(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		fail      int // leading transient failures
		final     error
		wantErr   error
		wantCalls int
	}{
		{"first try", 0, nil, nil, 1},
		{"permanent", 0, permanent, permanent, 1},
		{"recovers", 2, nil, nil, 3},
		{"exhausted", 5, nil, errTransient, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Retry(ctx, func() error {
				calls++
				if calls <= tt.fail {
					return Retryable(errTransient)
				}
				return tt.final
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Retry() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultBackoff.Retry(ctx, func() error {
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}
