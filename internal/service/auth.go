package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrConflict           = errors.New("username already taken")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// UserStore is the slice of the relational store the auth flow needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionStore records which refresh tokens are currently live.
type SessionStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
}

type AuthService struct {
	users      UserStore
	sessions   SessionStore
	jwtSecret  []byte
	accessTTL  time.Duration
	sessionTTL time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, cfg config.AuthConfig, logger *slog.Logger) (*AuthService, error) {
	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ACCESS_TOKEN_TTL", ErrMisconfigured)
	}

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		// Without a configured secret every restart invalidates all
		// outstanding tokens.
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return nil, err
		}
		secret = []byte(base64.RawURLEncoding.EncodeToString(raw))
		logger.Warn("JWT_SECRET not set, generated an ephemeral signing secret; tokens will not survive a restart")
	}

	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  secret,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
		log:        logger,
		now:        time.Now,
	}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := s.users.CreateUser(ctx, username, hash); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", "", ErrInvalidCredentials
	}

	accessToken, err := s.issueAccessToken(user.Username)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.issueRefreshToken(ctx, user.Username)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is unchanged; its validity is governed solely by the session
// record, not by anything embedded in the token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrInvalidToken
	}

	username, ok, err := s.sessions.Get(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidToken
	}

	return s.issueAccessToken(username)
}

// VerifyAccessToken checks the token's signature and expiry and returns the
// subject. It never consults the session store; access tokens are stateless.
func (s *AuthService) VerifyAccessToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ResolveUser maps a verified subject to its user record.
func (s *AuthService) ResolveUser(ctx context.Context, username string) (*model.AuthUser, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &model.AuthUser{ID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) issueAccessToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// issueRefreshToken mints a signed refresh token and registers it in the
// session store. The jti claim makes every issuance distinct. A failed store
// write in soft fail mode is logged upstream and the token is still returned;
// such a token simply never validates on refresh.
func (s *AuthService) issueRefreshToken(ctx context.Context, username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  username,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(s.now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Put(ctx, signed, username, s.sessionTTL); err != nil {
		return "", err
	}
	return signed, nil
}
