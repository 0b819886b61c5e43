package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	replayTTL   = 24 * time.Hour
	inFlightTTL = 30 * time.Second
)

// replay is the stored outcome of the first request for a key. A record with
// Status 0 marks a request that is still being served.
type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the first response for a repeated POST that
// carries the same Idempotency-Key from the same caller. Clients use it to
// retry accept, start and payment calls over flaky mobile links. A duplicate
// that arrives while the first request is still running gets 409.
func IdempotencyMiddleware(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := replayKey(c, key)

		pending, _ := json.Marshal(replay{})
		claimed, err := client.SetNX(ctx, redisKey, pending, inFlightTTL).Result()
		if err != nil {
			// Redis unavailable: serve without replay protection.
			c.Next()
			return
		}

		if !claimed {
			prev, err := loadReplay(c, client, redisKey)
			switch {
			case err != nil:
				c.Next()
			case prev.Status == 0:
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is still in progress"})
			default:
				c.Header(replayedHeader, "true")
				c.Data(prev.Status, prev.ContentType, prev.Body)
				c.Abort()
			}
			return
		}

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			// Server errors release the key so the client can retry.
			_ = client.Del(ctx, redisKey).Err()
			return
		}
		data, err := json.Marshal(replay{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err == nil {
			_ = client.Set(ctx, redisKey, data, replayTTL).Err()
		}
	}
}

// replayKey scopes the client key to the caller and the route so two actors
// (or two endpoints) never share a replay.
func replayKey(c *gin.Context, key string) string {
	h := sha256.New()
	for _, part := range []string{c.GetHeader("Authorization"), c.Request.URL.Path, key} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "idempotency:" + hex.EncodeToString(h.Sum(nil))
}

func loadReplay(c *gin.Context, client *redis.Client, key string) (replay, error) {
	var r replay
	data, err := client.Get(c.Request.Context(), key).Bytes()
	if err != nil {
		return r, err
	}
	return r, json.Unmarshal(data, &r)
}
