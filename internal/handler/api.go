package handler

import (
	"github.com/calorielog/internal/service"
	"github.com/calorielog/internal/session"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	gate     *session.Gate
	identity *service.IdentityService
	catalog  *service.CatalogService
	ledger   *service.LedgerService
	settings *service.SettingsService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, gate *session.Gate) *API {
	return &API{
		db:       gdb,
		gate:     gate,
		identity: service.NewIdentityService(gdb),
		catalog:  service.NewCatalogService(gdb),
		ledger:   service.NewLedgerService(gdb),
		settings: service.NewSettingsService(gdb),
	}
}

// Gate exposes the session gate for router middleware wiring.
func (a *API) Gate() *session.Gate {
	return a.gate
}
