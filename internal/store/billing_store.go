package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entitlement-service/internal/entitlement"
	"entitlement-service/internal/model"
	"entitlement-service/prometheus"

	"gorm.io/gorm"
)

// BillingStore is the gorm-backed implementation of entitlement.Store,
// reading and writing the empresas billing columns.
type BillingStore struct {
	db *gorm.DB
}

// NewBillingStore creates a store bound to a database handle
func NewBillingStore(db *gorm.DB) *BillingStore {
	return &BillingStore{db: db}
}

// Load fetches the billing record for a tenant. Returns
// entitlement.ErrNotFound when no row exists.
func (s *BillingStore) Load(ctx context.Context, tenantID string) (*model.TenantBilling, error) {
	defer prometheus.TrackDBOperation("load_billing")(time.Now())

	var rec model.TenantBilling
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("load billing record: %w", err)
	}

	return &rec, nil
}

// Save applies a partial update to the billing row. Only fields present in
// the patch are written, plus updated_at. Returns entitlement.ErrNotFound
// when the tenant has no row to update.
func (s *BillingStore) Save(ctx context.Context, tenantID string, patch entitlement.Patch) error {
	defer prometheus.TrackDBOperation("save_billing")(time.Now())

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.IsPremium != nil {
		updates["is_premium"] = *patch.IsPremium
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.TrialEndDate != nil {
		updates["trial_end_date"] = *patch.TrialEndDate
	}

	result := s.db.WithContext(ctx).Model(&model.TenantBilling{}).Where("id = ?", tenantID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("save billing record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entitlement.ErrNotFound
	}

	return nil
}
