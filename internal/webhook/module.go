// Package webhook receives signed payment-gateway webhooks and feeds them
// into the recovery flow.
package webhook

import (
	apphttp "tinko-recovery-backend/internal/http"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/logger"
)

// Module is the gateway webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the webhook module.
func NewModule(recovery RecoveryService, cfg config.WebhookConfig, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(recovery, cfg, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the gateway endpoints. They are public routes;
// authenticity comes from the gateway signature, not a JWT.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhooks := ctx.V1.Group("/webhooks")
	webhooks.POST("/razorpay", m.handler.HandleRazorpay)
	webhooks.POST("/stripe", m.handler.HandleStripe)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
