package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/backend/domain"
	store "github.com/taskdeck/backend/internal/infrastructure/docstore"
	"github.com/taskdeck/backend/repository"
)

const tasksCollection = "tasks"

type taskRepository struct {
	store *store.Store
}

// NewTaskRepository returns a document-store-backed task repository.
func NewTaskRepository(s *store.Store) repository.TaskRepository {
	return &taskRepository{store: s}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.Title == "" || task.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	id, err := r.store.InsertOne(ctx, tasksCollection, taskToDocument(task))
	if err != nil {
		return nil, err
	}
	task.ID = id
	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	doc, err := r.store.FindOne(ctx, tasksCollection, map[string]any{store.IDField: id})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return taskFromDocument(doc), nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Task, error) {
	docs, err := r.store.FindMany(ctx, tasksCollection, map[string]any{"owner_id": ownerID}, limit)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, *taskFromDocument(doc))
	}
	return tasks, nil
}

func (r *taskRepository) Patch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	patch := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		patch[key] = value
	}
	patch["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	err := r.store.UpdateOne(ctx, tasksCollection, map[string]any{store.IDField: id}, patch)
	if errors.Is(err, store.ErrNoDocuments) {
		return domain.ErrTaskNotFound
	}
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	err := r.store.DeleteOne(ctx, tasksCollection, map[string]any{store.IDField: id})
	if errors.Is(err, store.ErrNoDocuments) {
		return domain.ErrTaskNotFound
	}
	return err
}

func taskToDocument(task *domain.Task) store.Document {
	doc := store.Document{
		"owner_id":    task.OwnerID,
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"created_at":  task.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  task.UpdatedAt.Format(time.RFC3339Nano),
	}
	if task.ID != "" {
		doc[store.IDField] = task.ID
	}
	return doc
}

func taskFromDocument(doc store.Document) *domain.Task {
	return &domain.Task{
		ID:          docString(doc, store.IDField),
		OwnerID:     docString(doc, "owner_id"),
		Title:       docString(doc, "title"),
		Description: docString(doc, "description"),
		Status:      docString(doc, "status"),
		CreatedAt:   docTime(doc, "created_at"),
		UpdatedAt:   docTime(doc, "updated_at"),
	}
}
