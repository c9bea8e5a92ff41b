package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// TaskRepository persists task records. Lookups are never owner-filtered
// at this layer except ListByOwner; ownership policy lives in the use case.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Task, error)
	Patch(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}
