package model

import (
	"time"
)

// TenantBilling represents the billing row for a tenant, stored in the
// legacy "empresas" table shared with the rest of the platform.
//
// TrialEndDate is overloaded by that schema: while IsPremium is false it
// holds the trial expiry, and once IsPremium is true it holds the end of
// the paid period. The column cannot be split without a platform-wide
// migration, so every reader must disambiguate through IsPremium.
type TenantBilling struct {
	ID           string     `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	IsPremium    bool       `json:"is_premium" gorm:"column:is_premium;default:false"`
	TrialEndDate *time.Time `json:"trial_end_date" gorm:"column:trial_end_date"`
	Status       string     `json:"status" gorm:"column:status;type:varchar(50)"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName maps the model onto the existing empresas table
func (TenantBilling) TableName() string {
	return "empresas"
}
