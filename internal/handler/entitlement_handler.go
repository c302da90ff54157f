package handler

import (
	"net/http"
	"time"

	"entitlement-service/internal/entitlement"
	"entitlement-service/pkg/logger"
	"entitlement-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EntitlementHandler exposes the access-check surface consumed by the UI
// route guard.
type EntitlementHandler struct {
	gateway *entitlement.Gateway
}

// NewEntitlementHandler creates a handler bound to a gateway
func NewEntitlementHandler(gateway *entitlement.Gateway) *EntitlementHandler {
	return &EntitlementHandler{gateway: gateway}
}

// Check evaluates the caller's tenant and returns the decision. The
// response is always 200 with a decision body; when the subsystem cannot
// determine entitlement the decision itself blocks access, so the route
// guard only ever inspects should_block_access.
func (h *EntitlementHandler) Check(c echo.Context) error {
	log := logger.FromContext(c)

	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		log.Warn("Entitlement check without tenant context")
		prometheus.RecordTenantContextMissing()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	decision := h.gateway.CheckAccess(c.Request().Context(), tenantID, time.Now().UTC())

	outcome := "allowed"
	if decision.ShouldBlockAccess {
		outcome = "blocked"
	}
	prometheus.RecordEntitlementCheck(outcome)

	log.Info("Entitlement check",
		zap.String("tenant_id", tenantID),
		zap.Bool("is_premium", decision.IsPremium),
		zap.Bool("is_expired", decision.IsExpired),
		zap.Int("days_remaining", decision.DaysRemaining),
		zap.Bool("should_block_access", decision.ShouldBlockAccess))

	return c.JSON(http.StatusOK, decision)
}

// InvalidateCache drops the cached decision for the caller's tenant.
// Called after a payment is confirmed so the next check reads the
// extended billing record instead of a stale blocked decision.
func (h *EntitlementHandler) InvalidateCache(c echo.Context) error {
	log := logger.FromContext(c)

	tenantID, ok := c.Get("tenant_id").(string)
	if !ok || tenantID == "" {
		log.Warn("Cache invalidation without tenant context")
		prometheus.RecordTenantContextMissing()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
	}

	h.gateway.InvalidateCache(tenantID)
	log.Info("Entitlement cache invalidated", zap.String("tenant_id", tenantID))

	return c.JSON(http.StatusOK, echo.Map{"message": "cache invalidated"})
}
