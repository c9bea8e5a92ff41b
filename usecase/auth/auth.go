package auth

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/token"
	"github.com/taskdeck/backend/pkg/password"
	"github.com/taskdeck/backend/pkg/sanitize"
	"github.com/taskdeck/backend/repository"
)

// RegisterInput carries the registration fields plus the raw request body,
// which is sanitized before any of it can reach a store filter.
type RegisterInput struct {
	Email    string
	Password string
	Raw      json.RawMessage
}

type UseCase struct {
	users  repository.UserRepository
	tokens *token.Issuer
	logger *zap.Logger
}

func New(users repository.UserRepository, tokens *token.Issuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a credential record. The email uniqueness check is
// enforced by the store's unique index inside a single write transaction,
// so two concurrent registrations of the same address cannot both win.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) error {
	if err := sanitize.CheckRaw(in.Raw); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.NewError(domain.ErrCodeInvalidInput, "invalid email address")
	}

	if err := password.ValidateStrength(in.Password); err != nil {
		return err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "password hashing failed", err)
	}

	if _, err := uc.users.Create(ctx, &domain.User{Email: email, PasswordHash: hash}); err != nil {
		return err
	}

	uc.logger.Info("user registered", zap.String("email", email))
	return nil
}

// Login verifies credentials and returns a signed access token. Unknown
// email and wrong password produce the same error so the endpoint cannot
// be used to probe which addresses exist.
func (uc *UseCase) Login(ctx context.Context, email, pw string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !password.Verify(pw, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	signed, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return signed, nil
}
