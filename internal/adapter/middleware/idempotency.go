package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"
	// HeaderReplayed is set on responses served from the store.
	HeaderReplayed = "Idempotent-Replayed"

	// claimTTL bounds how long a crashed handler can block its key.
	claimTTL     = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes mutating requests safe to retry. A request is
// identified by method, path and Idempotency-Key; the first one runs, later
// ones with the same body get the stored response, a different body is a
// conflict. Server errors release the key because the transaction behind
// them rolled back.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	store := newReplayStore(rdb, ttl)
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey)))
			switch {
			case reqID == "":
				return reject(c, http.StatusBadRequest, "missing "+HeaderIdempotencyKey)
			case !validReqID(reqID):
				return reject(c, http.StatusBadRequest, "invalid "+HeaderIdempotencyKey+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}
			if !withinSkew(reqAt, nowUTC()) {
				return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := buildKey(req.Method, req.URL.Path, reqID)
			entry := replayEntry{
				Pending:   true,
				BodyHash:  bodyHash(body),
				RequestID: reqID,
				RequestAt: reqAt,
				CreatedAt: nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			claimed, err := store.claim(ctx, key, entry)
			if err != nil {
				log.Error("idempotency: claim", zap.String("key", key), zap.Error(err))
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				cur, err := store.load(ctx, key)
				if err != nil {
					log.Warn("idempotency: load", zap.String("key", key), zap.Error(err))
				}
				switch {
				case cur.BodyHash != "" && cur.BodyHash != entry.BodyHash:
					return reject(c, http.StatusConflict, HeaderIdempotencyKey+" reused with different body")
				case cur.replayable():
					c.Response().Header().Set(HeaderReplayed, "true")
					return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Body)
				}
				return reject(c, http.StatusConflict, "request is already in progress")
			}

			w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			storeCtx := context.WithoutCancel(req.Context())
			if w.status >= http.StatusInternalServerError {
				if err := store.release(storeCtx, key); err != nil {
					log.Warn("idempotency: release", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.Pending = false
			entry.Status = w.status
			entry.Body = w.body.Bytes()
			if err := store.finish(storeCtx, key, entry); err != nil {
				log.Warn("idempotency: finish", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
