package auth

import (
	"context"
	"strings"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Users is the user storage the service needs.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

type Service struct {
	users            Users
	hasher           PasswordHasher
	tokens           TokenIssuer
	allowAdminSignup bool
	dummyHash        string
}

func NewService(users Users, hasher PasswordHasher, tokens TokenIssuer, allowAdminSignup bool) *Service {
	s := &Service{users: users, hasher: hasher, tokens: tokens, allowAdminSignup: allowAdminSignup}
	// Compared against on unknown usernames so both failure paths cost a hash.
	s.dummyHash, _ = hasher.Hash("storefront-dummy-password")
	return s
}

const minPasswordLen = 6

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates a user with a hashed password. A taken username is a
// Conflict and nothing is written.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		return nil, apperr.Validation("username is required")
	case email == "":
		return nil, apperr.Validation("email is required")
	case len(in.Password) < minPasswordLen:
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.Validation("role must be customer or admin")
	}
	if role == models.RoleAdmin && !s.allowAdminSignup {
		return nil, apperr.Forbidden("admin accounts cannot be self-registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "hash password")
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns a token bound to the user's id.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return "", nil, err
		}
		s.hasher.Verify(s.dummyHash, password)
		return "", nil, apperr.New(apperr.KindInvalidCredentials, "invalid credentials")
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", nil, apperr.New(apperr.KindInvalidCredentials, "invalid credentials")
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindInternal, err, "issue token")
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to a current user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("authorization token is missing")
	}
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, err, "invalid or expired token")
	}
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthenticated("user no longer exists")
		}
		return nil, err
	}
	return user, nil
}
