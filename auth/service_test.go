package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T, allowAdmin bool) *auth.Service {
	st := storetest.New(t)
	return auth.NewService(st.Users, auth.BcryptHasher{Cost: bcrypt.MinCost}, auth.NewJWTIssuer("test-secret", time.Hour), allowAdmin)
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, false)

	user, err := svc.Register(ctx, auth.RegisterInput{Username: "paula", Email: "p@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	token, logged, err := svc.Login(ctx, "paula", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	me, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "paula", me.Username)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, false)
	_, err := svc.Register(ctx, auth.RegisterInput{Username: "quinn", Email: "q@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterInput{Username: "quinn", Email: "q2@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, false)

	_, err := svc.Register(ctx, auth.RegisterInput{Username: "", Email: "a@b.c", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Register(ctx, auth.RegisterInput{Username: "r", Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Register(ctx, auth.RegisterInput{Username: "r", Email: "a@b.c", Password: "secret1", Role: "root"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminSignupGate(t *testing.T) {
	ctx := context.Background()
	in := auth.RegisterInput{Username: "sam", Email: "s@example.com", Password: "secret1", Role: "admin"}

	_, err := newService(t, false).Register(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	user, err := newService(t, true).Register(ctx, in)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, false)
	_, err := svc.Register(ctx, auth.RegisterInput{Username: "tess", Email: "t@example.com", Password: "correct1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "tess", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRequire(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	customer := &models.User{ID: 2, Role: models.RoleCustomer}

	assert.ErrorIs(t, auth.Require(nil), apperr.ErrUnauthenticated)
	assert.NoError(t, auth.Require(customer))
	assert.NoError(t, auth.Require(admin, models.RoleAdmin))
	assert.ErrorIs(t, auth.Require(customer, models.RoleAdmin), apperr.ErrForbidden)
	assert.NoError(t, auth.Require(customer, models.RoleAdmin, models.RoleCustomer))
}
