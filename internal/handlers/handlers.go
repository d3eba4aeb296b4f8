package handlers

import (
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Lease   *LeaseHandler
	Payment *PaymentHandler
	Price   *PriceHandler
	Setting *SettingHandler
	Audit   *AuditHandler
	Job     *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(),
		Lease:   NewLeaseHandler(svcs.Lease, svcs.Schedule, svcs.Payment),
		Payment: NewPaymentHandler(svcs.Payment),
		Price:   NewPriceHandler(svcs.Price),
		Setting: NewSettingHandler(svcs.Setting),
		Audit:   NewAuditHandler(svcs.Audit),
		Job:     NewJobHandler(svcs.Job),
	}
}
