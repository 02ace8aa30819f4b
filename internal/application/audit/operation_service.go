package audit

import (
	"context"
	"fmt"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// OperationService exposes the operations audit log
type OperationService struct {
	logs audit.OperationLogRepository
}

// NewOperationService creates a new operation log service
func NewOperationService(logs audit.OperationLogRepository) *OperationService {
	return &OperationService{logs: logs}
}

// List lists audit entries matching the filter, newest first
func (s *OperationService) List(ctx context.Context, filter shared.Filter) ([]audit.OperationLog, error) {
	entries, err := s.logs.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return entries, nil
}
