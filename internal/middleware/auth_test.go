package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/token"
)

func invoke(t *testing.T, issuer *token.Issuer, authorization string) (*fasthttp.RequestCtx, bool) {
	t.Helper()

	var called bool
	next := func(ctx *fasthttp.RequestCtx) { called = true }
	wrapped := BearerAuth(issuer, zap.NewNop())(next)

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/tasks")
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	wrapped(&ctx)
	return &ctx, called
}

func TestBearerAuthValidToken(t *testing.T) {
	issuer := token.New(token.Config{Secret: "s", Algorithm: "HS256", TTLMinutes: 10})
	tok, err := issuer.Issue("user-1")
	require.NoError(t, err)

	ctx, called := invoke(t, issuer, "Bearer "+tok)
	assert.True(t, called)
	assert.Equal(t, "user-1", string(ctx.Request.Header.Peek("X-User-ID")))
}

func TestBearerAuthMissingHeader(t *testing.T) {
	issuer := token.New(token.Config{Secret: "s", Algorithm: "HS256", TTLMinutes: 10})

	ctx, called := invoke(t, issuer, "")
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestBearerAuthRejectsNonBearer(t *testing.T) {
	issuer := token.New(token.Config{Secret: "s", Algorithm: "HS256", TTLMinutes: 10})
	tok, err := issuer.Issue("user-1")
	require.NoError(t, err)

	ctx, called := invoke(t, issuer, "Basic "+tok)
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestBearerAuthBadToken(t *testing.T) {
	issuer := token.New(token.Config{Secret: "s", Algorithm: "HS256", TTLMinutes: 10})

	ctx, called := invoke(t, issuer, "Bearer garbage")
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestBearerAuthOverridesSpoofedIdentity(t *testing.T) {
	issuer := token.New(token.Config{Secret: "s", Algorithm: "HS256", TTLMinutes: 10})
	tok, err := issuer.Issue("user-1")
	require.NoError(t, err)

	var forwarded string
	next := func(ctx *fasthttp.RequestCtx) {
		forwarded = string(ctx.Request.Header.Peek("X-User-ID"))
	}
	wrapped := BearerAuth(issuer, zap.NewNop())(next)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("Authorization", "Bearer "+tok)
	ctx.Request.Header.Set("X-User-ID", "someone-else")
	wrapped(&ctx)

	assert.Equal(t, "user-1", forwarded)
}
