package service

import (
	"context"
	"errors"
	"time"

	auth "tinko-recovery-backend/internal/auth/authapi"
	"tinko-recovery-backend/internal/auth/password"
	"tinko-recovery-backend/internal/auth/repository"
	"tinko-recovery-backend/internal/auth/token"
	"tinko-recovery-backend/platform/apperr"
	"tinko-recovery-backend/platform/config"
	"tinko-recovery-backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")

const (
	accessTokenType  = "access"
	refreshTokenLen  = 48
	msgUserNotFound  = "user not found"
)

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

func (s *Service) SignUp(ctx context.Context, email, plainPassword string, fullName *string) (auth.Profile, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return auth.Profile{}, err
	}

	user, err := s.repo.CreateUser(ctx, email, hash, fullName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return auth.Profile{}, apperr.Conflict("email already registered")
		}
		return auth.Profile{}, err
	}

	s.log.AuthEvent("sign_up", email, true, "")
	return toProfile(user), nil
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return "", "", ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "bad password")
		return "", "", ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.AuthEvent("sign_in", email, false, "inactive account")
		return "", "", ErrInvalidCredentials
	}

	s.log.AuthEvent("sign_in", email, true, "")
	return s.issueTokens(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return "", "", ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	// Rotation: the presented token is single use.
	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := token.HashSHA256(refreshToken)
	return s.repo.RevokeRefreshToken(ctx, hash)
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (auth.Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.Profile{}, apperr.NotFound(msgUserNotFound)
		}
		return auth.Profile{}, err
	}
	return toProfile(user), nil
}

// GetUserByID implements auth.UserProvider for other domains.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (auth.Profile, error) {
	return s.GetMe(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (string, string, error) {
	accessToken, err := s.signJWT(user.ID, []string{user.Role}, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return "", "", err
	}

	refreshToken, err := token.GenerateRandomToken(refreshTokenLen)
	if err != nil {
		return "", "", err
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(user repository.User) auth.Profile {
	return auth.Profile{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Phone:          user.Phone,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}
