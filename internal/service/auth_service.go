package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// AuthConfig holds the settings the auth service needs.
type AuthConfig struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
	AdminEmails  []string
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// AuthService manages accounts and access tokens.  Roles come from the
// configured admin allow-list, never from the shape of the email.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cfg    AuthConfig
}

// NewAuthService wires the auth service.  tokens may be nil, in which case
// logout does not revoke anything.
func NewAuthService(users UserStore, tokens TokenStore, cfg AuthConfig) *AuthService {
	cfg.AdminEmails = lo.Map(cfg.AdminEmails, func(e string, _ int) string { return strings.ToLower(strings.TrimSpace(e)) })
	if cfg.AccessTTLMin <= 0 {
		cfg.AccessTTLMin = 24 * 60
	}
	return &AuthService{users: users, tokens: tokens, cfg: cfg}
}

// RoleFor returns the role granted to email.
func (s *AuthService) RoleFor(email string) string {
	if lo.Contains(s.cfg.AdminEmails, strings.ToLower(strings.TrimSpace(email))) {
		return model.RoleAdmin
	}
	return model.RoleUser
}

// Register creates an account.  A taken email yields ErrEmailExists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	u := &model.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
	}
	if u.FirstName == "" {
		return nil, invalid("firstName is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if len(in.Password) < MinPasswordLen {
		return nil, invalid("password must be at least %d characters", MinPasswordLen)
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.Role = s.RoleFor(u.Email)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues an access token.  Unknown emails
// and wrong passwords both return ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !utils.VerifyPassword(hash, password) {
		return nil, ErrUnauthorized
	}
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok.Token, ExpiresAt: tok.Exp, User: *u}, nil
}

// Me returns the account of userID.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Logout revokes the token identified by jti until exp.
func (s *AuthService) Logout(ctx context.Context, jti string, exp time.Time) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, jti, exp)
}
