package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged and never block the
// operation being audited.
func (s *AuditService) Log(ctx context.Context, action, entity string, entityID uint, details string, args ...any) {
	if len(args) > 0 {
		details = fmt.Sprintf(details, args...)
	}
	entry := &models.AuditLog{
		Actor:    ActorFrom(ctx, models.ActorAPI),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("Failed to write audit log", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
