package service

import (
	"context"

	"task-manager-api/internal/auth"
	"task-manager-api/internal/models"
)

// Session is what a successful register or login hands back.
type Session struct {
	AccessToken string
	TokenType   string
	User        *models.User
	Claims      *auth.Claims
}

type AuthService struct {
	users    *UserService
	tokens   *auth.TokenService
	resolver *auth.Resolver
}

func NewAuthService(users *UserService, tokens *auth.TokenService, resolver *auth.Resolver) *AuthService {
	return &AuthService{users: users, tokens: tokens, resolver: resolver}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// Logout revokes the token described by claims. Without a denylist this is a no-op
// and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.resolver.Revoke(ctx, claims)
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID, 0)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user, Claims: claims}, nil
}
