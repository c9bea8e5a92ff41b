package auth

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	store "github.com/taskdeck/backend/internal/infrastructure/docstore"
	"github.com/taskdeck/backend/internal/token"
	repo "github.com/taskdeck/backend/repository/docstore"
)

func newTestUseCase(t *testing.T) *UseCase {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"), store.UUIDCodec{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	users, err := repo.NewUserRepository(s)
	require.NoError(t, err)

	issuer := token.New(token.Config{Secret: "test-secret", Algorithm: "HS256", TTLMinutes: 60})
	return New(users, issuer, zap.NewNop())
}

func registerInput(email, password string) RegisterInput {
	raw, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return RegisterInput{Email: email, Password: password, Raw: raw}
}

func TestRegisterAndLogin(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	require.NoError(t, uc.Register(ctx, registerInput("a@x.com", "Abcdef1!")))

	tok, err := uc.Login(ctx, "a@x.com", "Abcdef1!")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	require.NoError(t, uc.Register(ctx, registerInput("a@x.com", "Abcdef1!")))

	err := uc.Register(ctx, registerInput("a@x.com", "Abcdef1!"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	// Email matching is case-insensitive.
	err = uc.Register(ctx, registerInput("A@X.com", "Abcdef1!"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestRegisterWeakPassword(t *testing.T) {
	uc := newTestUseCase(t)

	err := uc.Register(context.Background(), registerInput("a@x.com", "short"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeWeakPassword))
}

func TestRegisterInvalidEmail(t *testing.T) {
	uc := newTestUseCase(t)

	for _, email := range []string{"", "   ", "no-at-sign"} {
		err := uc.Register(context.Background(), registerInput(email, "Abcdef1!"))
		require.Error(t, err, "email %q", email)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidInput))
	}
}

func TestRegisterRejectsInjectionPayload(t *testing.T) {
	uc := newTestUseCase(t)

	in := RegisterInput{
		Email:    "a@x.com",
		Password: "Abcdef1!",
		Raw:      json.RawMessage(`{"email":"a@x.com","password":"Abcdef1!","$where":"1"}`),
	}
	err := uc.Register(context.Background(), in)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidInput))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	require.NoError(t, uc.Register(ctx, registerInput("a@x.com", "Abcdef1!")))

	_, wrongPassword := uc.Login(ctx, "a@x.com", "wrong-password")
	require.Error(t, wrongPassword)
	assert.True(t, domain.IsDomainError(wrongPassword, domain.ErrCodeUnauthorized))

	_, unknownUser := uc.Login(ctx, "nobody@x.com", "Abcdef1!")
	require.Error(t, unknownUser)

	// Same generic message for both failure modes.
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLoginTokenSubjectIsUserID(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"), store.UUIDCodec{})
	require.NoError(t, err)
	defer s.Close()

	users, err := repo.NewUserRepository(s)
	require.NoError(t, err)
	issuer := token.New(token.Config{Secret: "test-secret", Algorithm: "HS256", TTLMinutes: 60})
	uc := New(users, issuer, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, uc.Register(ctx, registerInput("a@x.com", "Abcdef1!")))

	tok, err := uc.Login(ctx, "a@x.com", "Abcdef1!")
	require.NoError(t, err)

	subject, err := issuer.Verify(tok)
	require.NoError(t, err)

	user, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}
