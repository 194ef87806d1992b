package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("RS_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := NewClient(ctx, config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIsNilError(t *testing.T) {
	if !IsNilError(goredis.Nil) {
		t.Error("redis.Nil not recognised")
	}
	if !IsNilError(errors.Join(errors.New("wrapped"), goredis.Nil)) {
		t.Error("wrapped redis.Nil not recognised")
	}
	if IsNilError(errors.New("other")) {
		t.Error("unrelated error recognised as nil")
	}
}

func TestReplaceListAndLRange(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "recordsearch:test:" + t.Name()
	t.Cleanup(func() { c.FlushByPattern(ctx, key) })

	if err := c.ReplaceList(ctx, key, []string{"old"}); err != nil {
		t.Fatal(err)
	}
	if err := c.ReplaceList(ctx, key, []string{"Alice Smith", "", "Bob Jones"}); err != nil {
		t.Fatal(err)
	}
	got, err := c.LRange(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Alice Smith", "", "Bob Jones"}, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if err := c.ReplaceList(ctx, key, nil); err != nil {
		t.Fatal(err)
	}
	got, err = c.LRange(ctx, key)
	if err != nil || len(got) != 0 {
		t.Errorf("emptied list = %v, %v", got, err)
	}
}

func TestSetGetFlush(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "recordsearch:test:flush:1"

	if err := c.Set(ctx, key, "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if v, err := c.Get(ctx, key); err != nil || v != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}
	n, err := c.FlushByPattern(ctx, "recordsearch:test:flush:*")
	if err != nil || n != 1 {
		t.Fatalf("FlushByPattern = %d, %v", n, err)
	}
	if _, err := c.Get(ctx, key); !IsNilError(err) {
		t.Errorf("Get after flush err = %v", err)
	}
}
