package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// OperationType classifies an audited operation
type OperationType string

const (
	OperationProduction OperationType = "PRODUCTION"
	OperationArrival    OperationType = "ARRIVAL"
	OperationWriteoff   OperationType = "WRITEOFF"
	OperationReserve    OperationType = "RESERVE"
	OperationRelease    OperationType = "RELEASE"
	OperationOrder      OperationType = "ORDER"
)

// OperationLog records a completed inventory operation for traceability
type OperationLog struct {
	shared.BaseEntity
	OperationType OperationType `gorm:"type:varchar(30);not null;index"`
	EntityType    string        `gorm:"type:varchar(50)"`
	EntityID      *uuid.UUID    `gorm:"type:uuid;index"`
	Description   string        `gorm:"type:text;not null"`
	User          string        `gorm:"column:user_name;type:varchar(100);not null;default:'system'"`
	OperationDate time.Time     `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OperationLog) TableName() string {
	return "operations_log"
}

// NewOperationLog creates a new audit record
func NewOperationLog(opType OperationType, description, user string) (*OperationLog, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Operation description cannot be empty")
	}
	if user == "" {
		user = "system"
	}

	return &OperationLog{
		BaseEntity:    shared.NewBaseEntity(),
		OperationType: opType,
		Description:   description,
		User:          user,
		OperationDate: time.Now(),
	}, nil
}

// WithEntity attaches the affected entity reference
func (l *OperationLog) WithEntity(entityType string, entityID uuid.UUID) *OperationLog {
	l.EntityType = entityType
	l.EntityID = &entityID
	return l
}

// OperationLogRepository defines the interface for audit log persistence
type OperationLogRepository interface {
	// Append stores a new log entry
	Append(ctx context.Context, entry *OperationLog) error

	// FindAll finds log entries matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]OperationLog, error)
}
