package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-sge/internal/auth/errors"
	"go-sge/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
	RefreshToken(ctx context.Context, accessToken, refreshToken string) (AuthResponse, error)
	RevokeToken(ctx context.Context, token string) error
	Logout(ctx context.Context, userID string) error
	GetMe(ctx context.Context, userID string) (UserResponse, error)
}

type service struct {
	repo   Repository
	tokens TokenService
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, tokens TokenService, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, now: time.Now, logger: l}
}

// HashPassword bcrypt-hashes a plain password with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Debug("register user", zap.String("email", email))

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return AuthResponse{}, err
	}
	if exists {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	if req.Password != req.ConfirmPassword {
		return AuthResponse{}, autherrors.ErrPasswordMismatch
	}

	var employeeID *uuid.UUID
	if raw := strings.TrimSpace(req.EmployeeID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return AuthResponse{}, apperror.InvalidField("employee_id")
		}
		employeeID = &id
	}

	role, err := s.repo.FindRoleByName(ctx, RoleUser)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("register default role missing", zap.String("role", RoleUser))
			return AuthResponse{}, autherrors.ErrRoleNotFound
		}
		return AuthResponse{}, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error("register hash password failed", zap.Error(err))
		return AuthResponse{}, err
	}

	user := &User{
		ID:           uuid.New(),
		UserName:     strings.TrimSpace(req.UserName),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		EmployeeID:   employeeID,
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []Role{*role},
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.logger.Error("register persist user failed", zap.Error(err))
		return AuthResponse{}, mapRepositoryError(err)
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return AuthResponse{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return toAuthResponse(user, pair), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	user, err := s.repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("login unknown email")
			return AuthResponse{}, autherrors.ErrInvalidCredentials
		}
		return AuthResponse{}, err
	}

	if !user.IsActive {
		s.logger.Warn("login inactive user", zap.String("user_id", user.ID.String()))
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", user.ID.String()))
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.TouchLastLogin(ctx, user); err != nil {
		s.logger.Error("login update last login failed", zap.Error(err))
		return AuthResponse{}, err
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return AuthResponse{}, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return toAuthResponse(user, pair), nil
}

func (s *service) RefreshToken(ctx context.Context, accessToken, refreshToken string) (AuthResponse, error) {
	user, pair, err := s.tokens.Rotate(ctx, accessToken, refreshToken)
	if err != nil {
		return AuthResponse{}, err
	}
	return toAuthResponse(user, pair), nil
}

func (s *service) RevokeToken(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *service) Logout(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return autherrors.ErrInvalidUserID
	}
	_, err := s.tokens.RevokeAll(ctx, userID, reasonLoggedOut)
	return err
}

func (s *service) GetMe(ctx context.Context, userID string) (UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return UserResponse{}, autherrors.ErrInvalidUserID
	}
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}
	return toUserResponse(user), nil
}

func toAuthResponse(u *User, pair TokenPair) AuthResponse {
	return AuthResponse{
		User:                  toUserResponse(u),
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}
