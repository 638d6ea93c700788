package app

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestApp_Close(t *testing.T) {
	if err := (&App{}).Close(); err != nil {
		t.Fatalf("closing an empty app: %v", err)
	}

	mr := miniredis.RunT(t)
	a := &App{redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	// A second close reaches the already-closed client and must report it.
	if err := a.Close(); err == nil {
		t.Fatal("expected the redis close error to be returned")
	}
}
