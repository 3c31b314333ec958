package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_SelectsDB(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}
	if err := c.Set(context.Background(), "fivebells:ping", "1", 0).Err(); err != nil {
		t.Fatalf("SET: %v", err)
	}
	s.Select(2)
	if got, _ := s.Get("fivebells:ping"); got != "1" {
		t.Fatalf("value not written to db 2, got %q", got)
	}
}

func TestOpenRedis_Unreachable(t *testing.T) {
	_, err := OpenRedis("not-a-real-host:6379", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not-a-real-host:6379") {
		t.Fatalf("error lacks address: %v", err)
	}
}

func TestCheck_FollowsServer(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	check := Check(c)
	if err := check(context.Background()); err != nil {
		t.Fatalf("check while up: %v", err)
	}
	s.Close()
	if err := check(context.Background()); err == nil {
		t.Fatal("check passed with the server down")
	}
}
