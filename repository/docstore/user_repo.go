package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/backend/domain"
	store "github.com/taskdeck/backend/internal/infrastructure/docstore"
	"github.com/taskdeck/backend/repository"
)

const usersCollection = "users"

type userRepository struct {
	store *store.Store
}

// NewUserRepository returns a document-store-backed user repository and
// declares the unique email index that guards concurrent registration.
func NewUserRepository(s *store.Store) (repository.UserRepository, error) {
	if err := s.EnsureUniqueIndex(usersCollection, "email"); err != nil {
		return nil, err
	}
	return &userRepository{store: s}, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Email == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	id, err := r.store.InsertOne(ctx, usersCollection, userToDocument(user))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.store.FindOne(ctx, usersCollection, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userFromDocument(doc), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := r.store.Codec().Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	doc, err := r.store.FindOne(ctx, usersCollection, map[string]any{store.IDField: id})
	if err != nil {
		if errors.Is(err, store.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userFromDocument(doc), nil
}

func userToDocument(user *domain.User) store.Document {
	doc := store.Document{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    user.UpdatedAt.Format(time.RFC3339Nano),
	}
	if user.ID != "" {
		doc[store.IDField] = user.ID
	}
	return doc
}

func userFromDocument(doc store.Document) *domain.User {
	return &domain.User{
		ID:           docString(doc, store.IDField),
		Email:        docString(doc, "email"),
		PasswordHash: docString(doc, "password_hash"),
		CreatedAt:    docTime(doc, "created_at"),
		UpdatedAt:    docTime(doc, "updated_at"),
	}
}
