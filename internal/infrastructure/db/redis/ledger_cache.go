package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
	"github.com/sessionguard/auth-api/pkg/metrics"
)

const (
	defaultCacheTTL = 30 * time.Second
	epochKey        = "ledger:epoch"
)

// cacheClient is the subset of *redis.Client the cache needs.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LedgerCache is a read-through cache in front of a SessionLedger. Only
// positive FindUsable answers are cached.
//
// Key format: ledger:usable:<epoch>:<sha256(token)>
//
// Every ledger write bumps the epoch before returning, so entries written
// under an older epoch are never read again. A reader that raced a write
// stores its stale answer under the old epoch, where nobody looks.
//
// When a bump fails the cache is bypassed until a later bump succeeds, and a
// logged out token's entry under the current epoch is deleted.
type LedgerCache struct {
	next   ports.SessionLedger
	client cacheClient
	ttl    time.Duration
	log    zerolog.Logger
	stale  atomic.Bool
}

// NewLedgerCache wraps next. A non-positive ttl uses defaultCacheTTL.
func NewLedgerCache(next ports.SessionLedger, client cacheClient, ttl time.Duration, log zerolog.Logger) *LedgerCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &LedgerCache{next: next, client: client, ttl: ttl, log: log}
}

func (c *LedgerCache) FindUsable(ctx context.Context, token string) (*domain.TokenRecord, bool, error) {
	if c.stale.Load() {
		if err := c.client.Incr(ctx, epochKey).Err(); err != nil {
			metrics.LedgerCacheTotal.WithLabelValues("bypass").Inc()
			return c.next.FindUsable(ctx, token)
		}
		c.stale.Store(false)
	}

	epoch, err := c.epoch(ctx)
	if err != nil {
		// cache unavailable, go straight to the ledger
		metrics.LedgerCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Msg("ledger cache epoch read failed")
		return c.next.FindUsable(ctx, token)
	}
	key := c.key(epoch, token)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec domain.TokenRecord
		if jerr := json.Unmarshal(raw, &rec); jerr == nil && rec.Usable() {
			metrics.LedgerCacheTotal.WithLabelValues("hit").Inc()
			return &rec, true, nil
		}
	case !errors.Is(err, redis.Nil):
		metrics.LedgerCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Msg("ledger cache read failed")
		return c.next.FindUsable(ctx, token)
	}
	metrics.LedgerCacheTotal.WithLabelValues("miss").Inc()

	rec, ok, err := c.next.FindUsable(ctx, token)
	if err != nil || !ok {
		return rec, ok, err
	}

	if payload, jerr := json.Marshal(rec); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Msg("ledger cache write failed")
		}
	}
	return rec, true, nil
}

func (c *LedgerCache) Issue(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	rec, err := c.next.Issue(ctx, token, principalID)
	if err != nil {
		return nil, err
	}
	return rec, c.invalidate(ctx)
}

func (c *LedgerCache) RevokeAllUsable(ctx context.Context, principalID string) (int, error) {
	n, err := c.next.RevokeAllUsable(ctx, principalID)
	if err != nil {
		return 0, err
	}
	return n, c.invalidate(ctx)
}

func (c *LedgerCache) IssueExclusive(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	rec, err := c.next.IssueExclusive(ctx, token, principalID)
	if err != nil {
		return nil, err
	}
	return rec, c.invalidate(ctx)
}

func (c *LedgerCache) MarkLoggedOut(ctx context.Context, token string) error {
	if err := c.next.MarkLoggedOut(ctx, token); err != nil {
		return err
	}
	return c.invalidate(ctx, token)
}

// invalidate bumps the epoch. On failure it marks the cache stale and drops
// the current-epoch entries of tokens.
func (c *LedgerCache) invalidate(ctx context.Context, tokens ...string) error {
	err := c.client.Incr(ctx, epochKey).Err()
	if err == nil {
		return nil
	}
	c.stale.Store(true)
	c.log.Error().Err(err).Msg("ledger cache invalidation failed, bypassing cache")

	if len(tokens) > 0 {
		if epoch, eerr := c.epoch(ctx); eerr == nil {
			keys := make([]string, len(tokens))
			for i, t := range tokens {
				keys[i] = c.key(epoch, t)
			}
			if derr := c.client.Del(ctx, keys...).Err(); derr != nil {
				c.log.Warn().Err(derr).Msg("ledger cache delete failed")
			}
		}
	}
	return fmt.Errorf("invalidate ledger cache: %w", err)
}

func (c *LedgerCache) epoch(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, epochKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *LedgerCache) key(epoch int64, token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("ledger:usable:%d:%s", epoch, hex.EncodeToString(sum[:]))
}
