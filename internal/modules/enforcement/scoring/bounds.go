package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	repos "github.com/yungbote/ops-accountability/internal/data/repos/enforcement"
	types "github.com/yungbote/ops-accountability/internal/domain/enforcement"
	"github.com/yungbote/ops-accountability/internal/pkg/dbctx"
	"github.com/yungbote/ops-accountability/internal/platform/cache"
)

// BoundsSource resolves the scoring bounds for an org.
type BoundsSource interface {
	Bounds(ctx context.Context, orgID uuid.UUID) (types.SystemBounds, error)
}

// BoundsCache reads enforcement_settings through a TTL cache so concurrent
// runs share one lookup per org.
type BoundsCache struct {
	cache *cache.TTL[types.SystemBounds]
}

func NewBoundsCache(settings repos.SettingsRepo, ttl time.Duration) *BoundsCache {
	load := func(ctx context.Context, key string) (types.SystemBounds, error) {
		orgID, err := uuid.Parse(key)
		if err != nil {
			return types.DefaultSystemBounds(), err
		}
		st, err := settings.Get(dbctx.Of(ctx), orgID)
		if err != nil {
			return types.DefaultSystemBounds(), err
		}
		return st.Bounds(), nil
	}
	return &BoundsCache{cache: cache.NewTTL[types.SystemBounds](ttl, load)}
}

func (b *BoundsCache) WithClock(now func() time.Time) *BoundsCache {
	b.cache.WithClock(now)
	return b
}

func (b *BoundsCache) Bounds(ctx context.Context, orgID uuid.UUID) (types.SystemBounds, error) {
	return b.cache.Get(ctx, orgID.String())
}

func (b *BoundsCache) Invalidate(orgID uuid.UUID) { b.cache.Invalidate(orgID.String()) }

// StaticBounds always returns the same bounds.
type StaticBounds types.SystemBounds

func (s StaticBounds) Bounds(ctx context.Context, orgID uuid.UUID) (types.SystemBounds, error) {
	return types.SystemBounds(s), nil
}
