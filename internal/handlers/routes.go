package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API on v1
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/health", h.Health.Index)

	leases := v1.Group("/leases/:lease_id")
	{
		leases.GET("", h.Lease.Show)
		leases.POST("/schedule", h.Lease.Schedule)
		leases.POST("/cancel", h.Lease.Cancel)
		leases.GET("/payments", h.Lease.Payments)
	}

	v1.GET("/payments", h.Payment.Index)
	v1.GET("/payments/summary", h.Payment.Summary)

	payments := v1.Group("/payments/:payment_id")
	{
		payments.GET("", h.Payment.Show)
		payments.POST("/price", h.Payment.Price)
		payments.POST("/invoice", h.Payment.Invoice)
		payments.GET("/invoice", h.Payment.ShowInvoice)
		payments.POST("/cancel", h.Payment.Cancel)
		payments.GET("/quotes", h.Payment.Quotes)
	}

	v1.GET("/prices", h.Price.Index)
	v1.POST("/prices", h.Price.Create)

	v1.GET("/settings", h.Setting.Index)
	v1.GET("/settings/:key", h.Setting.Show)
	v1.PUT("/settings/:key", h.Setting.Update)

	v1.GET("/audits", h.Audit.Index)

	v1.GET("/jobs/status", h.Job.Status)
	v1.POST("/jobs/:name/run", h.Job.Run)
}
