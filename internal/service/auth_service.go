package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"researchhub/internal/model"
	"researchhub/pkg/apperr"
	"researchhub/pkg/util"

	"go.uber.org/zap"
)

const minPasswordLength = 6

type AuthService struct {
	users     UserStore
	revoker   TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(users UserStore, revoker TokenRevoker, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger.Named("auth"),
	}
}

// Register creates a new user with a profile name.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > util.MaxPasswordBytes {
		return nil, apperr.Validation("password must be at most %d bytes", util.MaxPasswordBytes)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", u.ID))
	return u, nil
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks user credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, claims, err := util.GenerateJWT(u.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing token")
	}
	claims, err := util.ParseJWT(token, s.jwtSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid or expired token", err)
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("check token revocation", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("token has been revoked")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Internal("revoke token", err)
	}
	s.logger.Info("User logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}
