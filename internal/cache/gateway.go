package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultCooldown is how long the gateway stays disabled after a backend failure.
const DefaultCooldown = 30 * time.Second

// Gateway fronts a Store with best-effort semantics: backend errors are logged
// and reported as misses, never returned. A failure disables the gateway for
// the cooldown window so an outage does not add latency to every request.
//
// State is a single atomic holding the disabled-until deadline in unix nanos;
// zero means enabled.
type Gateway struct {
	store         Store
	cooldown      time.Duration
	disabledUntil atomic.Int64
	cacheTotal    *prometheus.CounterVec
	logger        *zap.Logger
	now           func() time.Time
}

// NewGateway wraps store. cacheTotal is an optional counter vec with label
// "result" (hit, miss, skip, error).
func NewGateway(store Store, cooldown time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Gateway {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:      store,
		cooldown:   cooldown,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// Enabled reports whether the gateway currently forwards calls to the store.
func (g *Gateway) Enabled() bool {
	until := g.disabledUntil.Load()
	return until == 0 || g.now().UnixNano() >= until
}

// Get returns the stored bytes and true on a hit.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, bool) {
	if !g.allow() {
		g.inc("skip")
		return nil, false
	}

	data, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			g.succeed()
			g.inc("miss")
			return nil, false
		}
		g.fail(OpGet, key, err)
		return nil, false
	}

	g.succeed()
	g.inc("hit")
	return data, true
}

// Set stores value under key with the given TTL. Failures are logged only.
func (g *Gateway) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !g.allow() {
		return
	}
	if err := g.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		g.fail(OpSet, key, err)
		return
	}
	g.succeed()
}

// ScanValues returns the values of every live key under prefix. Keys that
// expire between the scan and the fetch are skipped. On any backend failure
// the result is empty.
func (g *Gateway) ScanValues(ctx context.Context, prefix string) [][]byte {
	if !g.allow() {
		return nil
	}

	keys, err := g.store.ScanPrefix(ctx, prefix)
	if err != nil {
		g.fail(OpScan, prefix, err)
		return nil
	}
	if len(keys) == 0 {
		g.succeed()
		return nil
	}

	values, err := g.store.MGet(ctx, keys)
	if err != nil {
		g.fail(OpMGet, prefix, err)
		return nil
	}
	g.succeed()

	out := make([][]byte, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// allow reports whether a call may reach the store. Once the cooldown has
// elapsed exactly one caller wins the CAS and makes a trial call; the rest
// keep skipping until the trial resolves.
func (g *Gateway) allow() bool {
	until := g.disabledUntil.Load()
	if until == 0 {
		return true
	}
	now := g.now().UnixNano()
	if now < until {
		return false
	}
	return g.disabledUntil.CompareAndSwap(until, now+g.cooldown.Nanoseconds())
}

// succeed re-enables the cache. A slow call that was admitted before another
// caller's failure also lands here and clears that failure; any success counts
// as a passed trial.
func (g *Gateway) succeed() {
	until := g.disabledUntil.Load()
	if until == 0 {
		return
	}
	if g.disabledUntil.CompareAndSwap(until, 0) {
		g.logger.Info("Cache re-enabled")
	}
}

func (g *Gateway) fail(op, key string, err error) {
	g.inc("error")
	g.logger.Warn("Cache operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)

	deadline := g.now().Add(g.cooldown).UnixNano()
	for {
		cur := g.disabledUntil.Load()
		if cur >= deadline {
			return
		}
		if g.disabledUntil.CompareAndSwap(cur, deadline) {
			if cur == 0 {
				g.logger.Warn("Cache disabled", zap.Duration("cooldown", g.cooldown))
			}
			return
		}
	}
}

func (g *Gateway) inc(result string) {
	if g.cacheTotal != nil {
		g.cacheTotal.WithLabelValues(result).Inc()
	}
}
