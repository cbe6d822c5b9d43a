// Package customer provides the merchant-facing bounded context: onboarding,
// profile management and transaction registration.
package customer

import (
	"tinko-recovery-backend/internal/auth"
	"tinko-recovery-backend/internal/customer/handler"
	"tinko-recovery-backend/internal/customer/repository"
	"tinko-recovery-backend/internal/customer/service"
	"tinko-recovery-backend/internal/events"
	apphttp "tinko-recovery-backend/internal/http"
	"tinko-recovery-backend/platform/logger"
	"tinko-recovery-backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the customer bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the customer module with its dependencies.
func NewModule(pool *pgxpool.Pool, users auth.UserProvider, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.NewService(repo, users, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customer"
}

// Service returns the customer service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customer routes; all of them require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
