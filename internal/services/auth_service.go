package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"setlist-sync/internal/config"
	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService issues and verifies credentials. Authenticate is also the
// gatekeeper for websocket connection attempts: it runs once per handshake,
// before any presence entry is created.
type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenStore
	cfg    config.JWTConfig
	log    logger.Logger
}

func NewAuthService(users domain.UserRepository, tokens domain.TokenStore,
	cfg config.JWTConfig, log logger.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("User registered", "user_id", user.ID, "email", email)
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Authenticate verifies an access token and resolves its subject to a user
// record. Every failure mode collapses into ErrAuthenticationFailed: missing
// token, bad signature, expired, or a subject with no user row.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token missing", domain.ErrAuthenticationFailed)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: no subject", domain.ErrAuthenticationFailed)
	}

	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrAuthenticationFailed)
		}
		return nil, err
	}
	return user, nil
}

// Refresh rotates a refresh token: the old one is revoked and a fresh pair is
// issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.UserForRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}

	if err := s.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		s.log.Warn("Failed to revoke refresh token", "error", err)
	}
	return s.issueTokens(ctx, userID)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeRefreshToken(ctx, refreshToken)
}

func (s *AuthService) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessExpiration)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.tokens.SaveRefreshToken(ctx, refresh, userID, s.cfg.RefreshExpiration); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
