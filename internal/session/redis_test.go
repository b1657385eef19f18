package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newRedisStore はminiredisを使ったテスト用のRedisStoreを返す。
func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_CreateAndFind(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, newTestSession("s1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := store.Find(ctx, "s1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found == nil {
		t.Fatal("Find() returned nil for an existing session")
	}
	if found.Data.UserInfo.OpenID != "ou_s1" {
		t.Errorf("OpenID = %q, want ou_s1", found.Data.UserInfo.OpenID)
	}
}

func TestRedisStore_Find_NotFound(t *testing.T) {
	store, _ := newRedisStore(t)

	found, err := store.Find(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != nil {
		t.Error("Find() should return nil for an unknown session")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, newTestSession("s1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	found, _ := store.Find(ctx, "s1")
	if found != nil {
		t.Error("Find() should return nil after Delete")
	}
}

func TestRedisStore_ExpiryUsesTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := newTestSession("s1")
	sess.ExpiresAt = time.Now().Add(time.Hour)
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ttl := mr.TTL(keyPrefix + "s1")
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v, want within (0, 1h]", ttl)
	}

	// TTL経過後はRedis側で消える
	mr.FastForward(2 * time.Hour)

	found, _ := store.Find(ctx, "s1")
	if found != nil {
		t.Error("session should be gone after TTL")
	}
}

func TestRedisStore_Create_AlreadyExpired(t *testing.T) {
	store, _ := newRedisStore(t)

	sess := newTestSession("s1")
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	if err := store.Create(context.Background(), sess); err == nil {
		t.Error("Create() should reject an already expired session")
	}
}

func TestRedisStore_NoExpiryMeansNoTTL(t *testing.T) {
	store, mr := newRedisStore(t)

	if err := store.Create(context.Background(), newTestSession("s1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if mr.TTL(keyPrefix+"s1") != 0 {
		t.Error("session without ExpiresAt should be stored without TTL")
	}
}
