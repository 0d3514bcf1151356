package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Expected port 6379, got %d", cfg.Port)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "redis.example.com", Port: 6380}

	if cfg.Addr() != "redis.example.com:6380" {
		t.Errorf("Expected addr 'redis.example.com:6380', got '%s'", cfg.Addr())
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	cfg := &Config{
		Host:          "127.0.0.1",
		Port:          1,
		MaxRetries:    0,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   500 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewClient(ctx, cfg); err == nil {
		t.Error("Expected error for unreachable redis, got nil")
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Host = mr.Host()
	cfg.Port = port

	c, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestClient_BasicOperations(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	if err := c.Set(ctx, "k", "v", time.Minute).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.Get(ctx, "k").Result(); got != "v" {
		t.Errorf("Get() = %s, want v", got)
	}

	ok, _ := c.SetNX(ctx, "k", "other", time.Minute).Result()
	if ok {
		t.Error("SetNX() on existing key should return false")
	}

	if err := c.Del(ctx, "k").Err(); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	if _, err := c.Get(ctx, "k").Result(); err != goredis.Nil {
		t.Errorf("Get() after Del error = %v, want redis.Nil", err)
	}
}

func TestClient_DeleteByPattern(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for _, k := range []string{"store:list:a", "store:list:b", "store:product:1"} {
		if err := c.Set(ctx, k, "x", 0).Err(); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.DeleteByPattern(ctx, "store:list:*"); err != nil {
		t.Fatalf("DeleteByPattern() error = %v", err)
	}

	if mr.Exists("store:list:a") || mr.Exists("store:list:b") {
		t.Error("expected list keys to be deleted")
	}
	if !mr.Exists("store:product:1") {
		t.Error("expected product key to survive")
	}
}
