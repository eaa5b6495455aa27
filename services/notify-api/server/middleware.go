package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/postpress/cnotify/internal/notice"
	"github.com/postpress/cnotify/pkg/kv"
	"github.com/postpress/cnotify/pkg/logx"
	"github.com/postpress/cnotify/pkg/metrics"
)

const noticeQueueKey = "notice_queue"

// Notices opens the per-cycle notice queue before any handler runs and
// flushes it in a deferred teardown, so the flush happens exactly once
// on every exit path, early aborts included. Registered first so later
// middleware and handlers can already enqueue.
func Notices(store *kv.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := notice.Open(c.Request.Context(), store)
		if err != nil {
			logx.L().Errorw("notice_open_error", "error", err)
			c.AbortWithStatusJSON(503, gin.H{"error": "notice store unavailable"})
			return
		}
		c.Set(noticeQueueKey, q)

		defer func() {
			// The request context may already be done here; the flush
			// still has to happen.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := q.Flush(ctx); err != nil {
				logx.L().Errorw("notice_flush_error", "error", err)
			}
		}()

		c.Next()
	}
}

// NoticesFrom returns the queue opened for this request cycle.
func NoticesFrom(c *gin.Context) *notice.Queue {
	return c.MustGet(noticeQueueKey).(*notice.Queue)
}

func Observability() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", rid)

		c.Set("request_id", rid)
		c.Next()

		lat := time.Since(start).Seconds()
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		metrics.APIRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(c.Request.Method, path).Observe(lat)

		logx.L().Infow("http_access",
			"rid", rid,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", lat,
			"client_ip", c.ClientIP(),
		)
	}
}
