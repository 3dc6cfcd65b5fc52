package ratelimit

import (
	"context"

	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/internal/observability/metrics"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// UploadLimiter throttles spreadsheet uploads per user. A disabled
// limiter allows everything, so deployments without redis keep working.
type UploadLimiter struct {
	cfg     config.RateLimitConfig
	log     *zap.Logger
	bucket  *TokenBucket
	metrics *metrics.Metrics
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewUploadLimiter(p Params) *UploadLimiter {
	limiter := &UploadLimiter{
		cfg:     p.Cfg.RateLimit,
		log:     p.Log.Named("ratelimit.upload"),
		metrics: p.Metrics,
	}

	if !p.Cfg.RateLimit.Enabled || p.Cfg.RateLimit.RedisAddr == "" {
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Cfg.RateLimit.RedisAddr,
		Password: p.Cfg.RateLimit.RedisPassword,
		DB:       p.Cfg.RateLimit.RedisDB,
	})
	limiter.bucket = NewTokenBucket(client)
	return limiter
}

// Allow reports whether the current user may start another upload.
// Limiter failures fail open: an unreachable redis must not block
// claim ingestion.
func (l *UploadLimiter) Allow(ctx context.Context) (*Result, bool) {
	if l.bucket == nil {
		return &Result{Allowed: true}, true
	}

	ident, ok := identity.FromContext(ctx)
	if !ok {
		return &Result{Allowed: true}, true
	}

	result, err := l.bucket.Allow(ctx, "upload:"+ident.UserID.String(), l.cfg.UploadRate, l.cfg.UploadBurst)
	if err != nil {
		l.log.Warn("rate limiter unavailable", zap.Error(err))
		return &Result{Allowed: true}, true
	}

	if !result.Allowed {
		l.metrics.RecordRateLimitDenied(ctx, "upload", "token_bucket")
	}
	return result, result.Allowed
}

var Module = fx.Module("ratelimit",
	fx.Provide(NewUploadLimiter),
)
