package models

import (
	"time"
)

// AuditLog records an engine mutation
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"size:50;not null" json:"actor"`  // api, scheduler, cli
	Action    string    `gorm:"size:50;not null" json:"action"` // SCHEDULE, PRICE, INVOICE, CANCEL, OVERDUE, FINALIZE
	Entity    string    `gorm:"size:50;not null" json:"entity"` // Lease, Payment
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionSchedule = "SCHEDULE"
	AuditActionPrice    = "PRICE"
	AuditActionInvoice  = "INVOICE"
	AuditActionCancel   = "CANCEL"
	AuditActionOverdue  = "OVERDUE"
	AuditActionFinalize = "FINALIZE"
)

// Audit actor constants
const (
	ActorAPI       = "api"
	ActorScheduler = "scheduler"
	ActorCLI       = "cli"
)
