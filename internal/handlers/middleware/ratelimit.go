package middleware

import (
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/charleshuang3/posterboard/internal/errs"
	"github.com/charleshuang3/posterboard/internal/handlers/render"
)

const maxTrackedClients = 10000

type RateLimitConfig struct {
	// Requests allowed per client IP per window.
	Requests int64 `yaml:"requests"`

	WindowMinutes uint `yaml:"window_minutes"`
}

func (c *RateLimitConfig) applyDefaults() {
	if c.Requests <= 0 {
		// matches the limits the API shipped with: 10 auth calls per hour.
		c.Requests = 10
	}
	if c.WindowMinutes == 0 {
		c.WindowMinutes = 60
	}
}

// RateLimiter is a fixed window per-IP limiter for the credential endpoints.
// Counters live in an in-memory TTL cache, so limits are per instance and
// approximate; that is good enough to blunt credential stuffing.
type RateLimiter struct {
	cache  *ristretto.Cache[string, *atomic.Int64]
	limit  int64
	window time.Duration
}

func NewRateLimiter(cfg *RateLimitConfig) *RateLimiter {
	cfg.applyDefaults()

	c, err := ristretto.NewCache(&ristretto.Config[string, *atomic.Int64]{
		NumCounters: maxTrackedClients,
		MaxCost:     maxTrackedClients,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create rate limiter cache")
	}

	return &RateLimiter{
		cache:  c,
		limit:  cfg.Requests,
		window: time.Duration(cfg.WindowMinutes) * time.Minute,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		counter, ok := r.cache.Get(c.ClientIP())
		if !ok {
			counter = &atomic.Int64{}
			r.cache.SetWithTTL(c.ClientIP(), counter, 1, r.window)
			r.cache.Wait()
			// A concurrent first request may have stored its own counter;
			// re-read so both requests bump the same one.
			if stored, found := r.cache.Get(c.ClientIP()); found {
				counter = stored
			}
		}

		if counter.Add(1) > r.limit {
			render.Error(c, errs.RateLimited())
			return
		}

		c.Next()
	}
}
