// Package recovery provides the payment-recovery bounded context: failure
// event ingestion, classification and recovery link lifecycle.
package recovery

import (
	"tinko-recovery-backend/internal/auth"
	"tinko-recovery-backend/internal/events"
	apphttp "tinko-recovery-backend/internal/http"
	"tinko-recovery-backend/internal/recovery/handler"
	"tinko-recovery-backend/internal/recovery/repository"
	"tinko-recovery-backend/internal/recovery/service"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/httpkit"
	"tinko-recovery-backend/platform/logger"
	"tinko-recovery-backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the recovery bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the recovery module. scheduler may be nil when no Redis is
// configured; retry reminders are then skipped.
func NewModule(pool *pgxpool.Pool, cfg config.RecoveryConfig, users auth.UserProvider, bus events.Bus, scheduler service.Scheduler, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.NewService(repo, cfg, bus, scheduler, log)
	h := handler.New(svc, users, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "recovery"
}

// Service returns the recovery service for the worker and other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts recovery routes. Ingest and token resolution are
// public; link management requires authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Gateways post failures without credentials; a bearer token, when
	// present, attaches the transaction to the caller's organization.
	ingest := ctx.V1.Group("/events")
	ingest.Use(httpkit.OptionalAuth(ctx.Config))
	ingest.POST("/payment-failed", m.handler.PaymentFailed)

	ctx.V1.GET("/events/by-ref/:ref", m.handler.ListEventsByRef)
	ctx.V1.POST("/classify", m.handler.Classify)

	ctx.Protected.POST("/recoveries/by-ref/:ref/link", m.handler.CreateLink)
	ctx.Protected.GET("/recoveries/by-ref/:ref", m.handler.ListAttemptsByRef)

	ctx.V1.GET("/recoveries/by-token/:token", m.handler.GetByToken)
	ctx.V1.POST("/recoveries/by-token/:token/open", m.handler.MarkOpen)
	ctx.V1.POST("/recoveries/by-token/:token/used", m.handler.MarkUsed)

	ctx.Engine.GET("/pay/retry/:token", m.handler.RetryPage)
}

var _ apphttp.Module = (*Module)(nil)
