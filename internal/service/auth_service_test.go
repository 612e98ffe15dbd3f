package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

type memTokens struct {
	revoked map[string]time.Time
}

func (m *memTokens) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.revoked[jti] = exp
	return nil
}

func (m *memTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func newAuthFixture() (*AuthService, *memUsers, *memTokens) {
	users := &memUsers{}
	tokens := &memTokens{revoked: map[string]time.Time{}}
	svc := NewAuthService(users, tokens, AuthConfig{
		JWTSecret: "secret", AccessTTLMin: 60, BcryptCost: 4,
		AdminEmails: []string{" Boss@Cinema.io "},
	})
	return svc, users, tokens
}

func TestRegisterAssignsRoleFromAllowList(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FirstName: "Ada", Email: "boss@cinema.io", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	// The old email-shape heuristic grants nothing.
	u, err = svc.Register(ctx, RegisterInput{FirstName: "john", Email: "johnadmin@gmail.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)

	_, err = svc.Register(ctx, RegisterInput{FirstName: "John", Email: "JohnAdmin@gmail.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	for _, in := range []RegisterInput{
		{Email: "a@x.com", Password: "secret1"},
		{FirstName: "A", Email: "nope", Password: "secret1"},
		{FirstName: "A", Email: "a@x.com", Password: "12345"},
	} {
		_, err := svc.Register(ctx, in)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	}
}

func TestLoginErrorsAreIdentical(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{FirstName: "Ada", Email: "ada@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "ada@x.com", "nope")
	_, unknown := svc.Login(ctx, "ghost@x.com", "secret1")
	assert.ErrorIs(t, wrongPass, ErrUnauthorized)
	assert.Equal(t, wrongPass, unknown)

	sess, err := svc.Login(ctx, "ada@x.com", "secret1")
	require.NoError(t, err)
	claims, err := utils.ParseAccessToken("secret", sess.Token)
	require.NoError(t, err)
	id, _ := claims.UserID()
	assert.Equal(t, sess.User.ID, id)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	me, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", me.Email)
}

func TestLogoutRevokes(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	exp := time.Now().Add(time.Hour)
	require.NoError(t, svc.Logout(context.Background(), "jti-1", exp))
	revoked, _ := tokens.IsRevoked(context.Background(), "jti-1")
	assert.True(t, revoked)
}
