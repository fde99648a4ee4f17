package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// LocalRateLimit is a per-process fixed-window limiter keyed by client IP.
// Used when Redis is not configured, so limits are per replica.
func LocalRateLimit(maxRequests int, per time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*window)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > per {
			for k, w := range clients {
				if now.Sub(w.start) > per {
					delete(clients, k)
				}
			}
			lastSweep = now
		}
		w, ok := clients[ip]
		if !ok || now.Sub(w.start) > per {
			w = &window{start: now}
			clients[ip] = w
		}
		w.count++
		count := w.count
		mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()

		c.Next()
	}
}
