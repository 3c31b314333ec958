package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// replayEntry is what the store keeps per key: a pending claim first, the
// captured response once the handler finished.
type replayEntry struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status,omitempty"`
	Body      []byte    `json:"body,omitempty"`
	BodyHash  string    `json:"body_hash"`
	RequestID string    `json:"request_id"`
	RequestAt time.Time `json:"request_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (e replayEntry) replayable() bool { return !e.Pending && e.Status != 0 && len(e.Body) > 0 }

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func newReplayStore(rdb *redis.Client, ttl time.Duration) *replayStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &replayStore{rdb: rdb, ttl: ttl}
}

// claim stores a pending entry unless the key is already taken.
func (s *replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, claimTTL).Result()
}

func (s *replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return replayEntry{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, nil
}

// finish overwrites the claim with the final response for the replay window.
func (s *replayStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func bodyHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, requestID string) string {
	return "idemp:fivebells:" + strings.ToLower(method) + ":" + path + ":" + requestID
}

// validReqID accepts a dashed UUID or the 32-hex form pkg/id generates.
func validReqID(id string) bool {
	if len(id) != 36 && len(id) != 32 {
		return false
	}
	if id != strings.ToLower(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func withinSkew(at, now time.Time) bool {
	return !at.Before(now.Add(-maxClockSkew)) && !at.After(now.Add(maxClockSkew))
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// an explicit zone. Timestamps without a zone are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}
