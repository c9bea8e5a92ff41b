package task

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/infrastructure/docstore"
	"github.com/taskdeck/backend/pkg/sanitize"
	"github.com/taskdeck/backend/repository"
)

// DefaultPageSize caps List results when no page size is configured.
const DefaultPageSize = 100

// CreateInput carries the new-task fields plus the raw request body for
// sanitization.
type CreateInput struct {
	Title       string
	Description string
	Status      string
	Raw         json.RawMessage
}

type UseCase struct {
	tasks    repository.TaskRepository
	ids      docstore.IDCodec
	pageSize int
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, ids docstore.IDCodec, pageSize int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if ids == nil {
		ids = docstore.UUIDCodec{}
	}
	return &UseCase{
		tasks:    tasks,
		ids:      ids,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Create persists a task owned by ownerID and returns it with its
// assigned id.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Task, error) {
	if err := sanitize.CheckRaw(in.Raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalidInput, "title is required")
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("task created", zap.String("task_id", created.ID), zap.String("owner_id", ownerID))
	return created, nil
}

// List returns the caller's tasks, capped at the configured page size.
// Order is not guaranteed.
func (uc *UseCase) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, ownerID, uc.pageSize)
}

// Update applies a partial patch to the caller's task. Only title,
// description and status are patchable; owner_id is immutable. A task
// that does not exist and a task owned by someone else produce the same
// not-found error, so non-owners learn nothing about foreign ids.
func (uc *UseCase) Update(ctx context.Context, ownerID, taskID string, patch map[string]any) (*domain.Task, error) {
	id, err := uc.ids.Parse(taskID)
	if err != nil {
		return nil, domain.ErrInvalidTaskID
	}
	if err := sanitize.Check(patch); err != nil {
		return nil, err
	}

	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}

	if _, err := uc.ownedTask(ctx, ownerID, id); err != nil {
		return nil, err
	}

	if err := uc.tasks.Patch(ctx, id, fields); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, id)
}

// Delete removes the caller's task, with the same id and ownership policy
// as Update.
func (uc *UseCase) Delete(ctx context.Context, ownerID, taskID string) error {
	id, err := uc.ids.Parse(taskID)
	if err != nil {
		return domain.ErrInvalidTaskID
	}

	if _, err := uc.ownedTask(ctx, ownerID, id); err != nil {
		return err
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("task deleted", zap.String("task_id", id), zap.String("owner_id", ownerID))
	return nil
}

func (uc *UseCase) ownedTask(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(ownerID) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// patchFields extracts the patchable subset of the payload. Unknown keys
// are ignored rather than rejected; reserved keys never pass through.
func patchFields(patch map[string]any) (map[string]any, error) {
	fields := make(map[string]any, 3)
	for _, key := range []string{"title", "description", "status"} {
		raw, ok := patch[key]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, domain.NewError(domain.ErrCodeInvalidInput, key+" must be a string")
		}
		fields[key] = value
	}
	if title, ok := fields["title"].(string); ok && strings.TrimSpace(title) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalidInput, "title cannot be empty")
	}
	return fields, nil
}
