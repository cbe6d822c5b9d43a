// Package exports provides CSV exports of an organization's transactions
// and recovery attempts.
package exports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"tinko-recovery-backend/internal/auth"
	apphttp "tinko-recovery-backend/internal/http"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the exports module.
func NewModule(pool *pgxpool.Pool, users auth.UserProvider) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), users)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/exports")
	group.GET("/transactions.csv", m.handler.HandleExportTransactions)
	group.GET("/recoveries.csv", m.handler.HandleExportRecoveries)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
