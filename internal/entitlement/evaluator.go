package entitlement

import (
	"time"

	"entitlement-service/internal/model"
)

const (
	// TrialGraceDays is the display-only grace window reported for a
	// brand-new tenant that has no trial end date persisted yet.
	TrialGraceDays = 7

	// PremiumFallbackDays anchors the premium expiry on updated_at when
	// the overloaded trial_end_date column is empty for a paying tenant.
	PremiumFallbackDays = 30

	millisPerDay = 86_400_000
)

// Decision is the outcome of evaluating a tenant's billing record at a
// point in time. ShouldBlockAccess is the field route guards act on; the
// rest exists for display and diagnostics.
type Decision struct {
	IsPremium         bool       `json:"is_premium"`
	IsExpired         bool       `json:"is_expired"`
	DaysRemaining     int        `json:"days_remaining"`
	ShouldBlockAccess bool       `json:"should_block_access"`
	ExpirationDate    *time.Time `json:"expiration_date"`
}

// Denied returns the fail-closed decision used whenever a billing record
// cannot be loaded. A tenant without a readable record is never let in.
func Denied() Decision {
	return Decision{
		IsExpired:         true,
		DaysRemaining:     0,
		ShouldBlockAccess: true,
	}
}

// Evaluate computes the access decision for a billing record at "now".
// It is total: absent or zero-valued dates fall back to the grace or
// fallback windows instead of producing an error, so callers always get
// a usable decision.
//
// When a premium record turns out to be past its expiry the decision
// reports IsPremium=false even though the stored record still says true.
// Persisting that downgrade is the gateway's job, not the evaluator's.
func Evaluate(rec *model.TenantBilling, now time.Time) Decision {
	if rec == nil {
		return Denied()
	}

	if !rec.IsPremium {
		end := rec.TrialEndDate
		if end == nil || end.IsZero() {
			// New tenant, no deadline persisted yet. Never blocked.
			return Decision{
				DaysRemaining: TrialGraceDays,
			}
		}
		if now.After(*end) {
			return Decision{
				IsExpired:         true,
				ShouldBlockAccess: true,
				ExpirationDate:    end,
			}
		}
		return Decision{
			DaysRemaining:  daysUntil(*end, now),
			ExpirationDate: end,
		}
	}

	end := rec.TrialEndDate
	if end == nil || end.IsZero() {
		anchor := rec.UpdatedAt
		if anchor.IsZero() {
			// Paid tenant with no usable dates at all: anchor on now
			// rather than instantly locking out a confirmed payer.
			anchor = now
		}
		fallback := anchor.Add(PremiumFallbackDays * 24 * time.Hour)
		end = &fallback
	}

	if now.After(*end) {
		// Decision-time downgrade: the stored flag is stale.
		return Decision{
			IsPremium:         false,
			IsExpired:         true,
			ShouldBlockAccess: true,
			ExpirationDate:    end,
		}
	}

	return Decision{
		IsPremium:      true,
		DaysRemaining:  daysUntil(*end, now),
		ExpirationDate: end,
	}
}

// daysUntil returns the ceiling of the whole-day distance between now and
// end. Ceiling, never floor: a tenant with hours left on the clock still
// sees one day remaining instead of a premature zero.
func daysUntil(end, now time.Time) int {
	diff := end.Sub(now).Milliseconds()
	if diff <= 0 {
		return 0
	}
	return int((diff + millisPerDay - 1) / millisPerDay)
}
