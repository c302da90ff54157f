package entitlement

import (
	"context"
	"errors"
	"time"

	"entitlement-service/internal/model"
	"entitlement-service/prometheus"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Store.Load when no billing row exists for the
// tenant, and by Store.Save when the partial update matched no row.
var ErrNotFound = errors.New("billing record not found")

// Patch is a partial update of a billing record. Only non-nil fields are
// written, so concurrent writers (the payment webhook extending a
// subscription, this gateway downgrading one) never clobber each other's
// untouched columns.
type Patch struct {
	IsPremium    *bool
	Status       *string
	TrialEndDate *time.Time
}

// Store loads and saves tenant billing records. The gorm-backed
// implementation lives in internal/store; tests substitute fakes.
type Store interface {
	Load(ctx context.Context, tenantID string) (*model.TenantBilling, error)
	Save(ctx context.Context, tenantID string, patch Patch) error
}

const defaultSaveTimeout = 5 * time.Second

// Gateway orchestrates access checks: it loads the billing record,
// evaluates it, persists any premium-to-expired transition it detects and
// serves recent decisions from the injected cache.
type Gateway struct {
	store       Store
	cache       *DecisionCache
	log         *zap.Logger
	saveTimeout time.Duration
}

// NewGateway creates a gateway. The cache may be nil to disable caching;
// a zero saveTimeout falls back to the default.
func NewGateway(store Store, cache *DecisionCache, log *zap.Logger, saveTimeout time.Duration) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	return &Gateway{
		store:       store,
		cache:       cache,
		log:         log,
		saveTimeout: saveTimeout,
	}
}

// CheckAccess computes the entitlement decision for a tenant at "now".
// It never returns an error: any failure to load the billing record
// produces a blocking decision. Access is denied on uncertainty, never
// granted.
func (g *Gateway) CheckAccess(ctx context.Context, tenantID string, now time.Time) Decision {
	if g.cache != nil {
		if d, ok := g.cache.Get(tenantID, now); ok {
			prometheus.RecordCacheHit()
			return d
		}
		prometheus.RecordCacheMiss()
	}

	rec, err := g.store.Load(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			g.log.Warn("No billing record for tenant, denying access",
				zap.String("tenant_id", tenantID))
		} else {
			g.log.Error("Failed to load billing record, denying access",
				zap.String("tenant_id", tenantID),
				zap.Error(err))
		}
		// Load failures are not cached: a transient outage should not pin
		// the tenant to a blocked decision for a full TTL.
		return Denied()
	}

	decision := Evaluate(rec, now)

	if rec.IsPremium && decision.IsExpired {
		g.persistDowngrade(ctx, tenantID)
	}

	if g.cache != nil {
		g.cache.Put(tenantID, decision, now)
	}

	return decision
}

// InvalidateCache drops the cached decision for a tenant. Callers use it
// after the payment webhook collaborator updates the billing record.
func (g *Gateway) InvalidateCache(tenantID string) {
	if g.cache != nil {
		g.cache.Invalidate(tenantID)
	}
}

// persistDowngrade writes the premium-to-expired transition back to the
// store. Best-effort: a failure is logged and swallowed, because the
// computed decision already blocks the current request and the write is
// idempotent, so the next check retries it.
func (g *Gateway) persistDowngrade(ctx context.Context, tenantID string) {
	saveCtx, cancel := context.WithTimeout(ctx, g.saveTimeout)
	defer cancel()

	isPremium := false
	status := "expired"
	err := g.store.Save(saveCtx, tenantID, Patch{
		IsPremium: &isPremium,
		Status:    &status,
	})
	if err != nil {
		g.log.Error("Failed to persist premium downgrade",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return
	}

	prometheus.RecordDowngrade()
	g.log.Info("Persisted premium downgrade",
		zap.String("tenant_id", tenantID))
}
