package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	autherrors "go-sge/internal/auth/errors"
	"go-sge/internal/shared/jwtauth"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reasonReplaced  = "replaced by new token"
	reasonRevoked   = "revoked by user"
	reasonLoggedOut = "user logged out"
)

type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

//go:generate mockgen -source=token_service.go -destination=mock/token_service_mock.go -package=mock
type TokenService interface {
	Issue(ctx context.Context, user *User) (TokenPair, error)
	Rotate(ctx context.Context, accessToken, refreshToken string) (*User, TokenPair, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID, reason string) (int64, error)
	Sweep(ctx context.Context) (int64, error)
}

type tokenService struct {
	db         *sql.DB
	users      Repository
	tokens     TokenRepository
	jwt        *jwtauth.Manager
	refreshTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

func NewTokenService(
	db *sql.DB,
	users Repository,
	tokens TokenRepository,
	jwt *jwtauth.Manager,
	refreshTTL time.Duration,
	logger ...*zap.Logger,
) TokenService {
	l := zap.L().Named("auth.tokens")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.tokens")
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &tokenService{
		db:         db,
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		now:        time.Now,
		logger:     l,
	}
}

func (s *tokenService) Issue(ctx context.Context, user *User) (TokenPair, error) {
	return s.issue(ctx, s.tokens, user)
}

func (s *tokenService) issue(ctx context.Context, tokens TokenRepository, user *User) (TokenPair, error) {
	identity := jwtauth.Identity{
		UserID:   user.ID.String(),
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}
	if user.EmployeeID != nil {
		identity.EmployeeID = user.EmployeeID.String()
	}

	access, accessExp, err := s.jwt.Mint(identity)
	if err != nil {
		s.logger.Error("mint access token failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}

	value, err := jwtauth.NewRefreshToken()
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}

	now := s.now().UTC()
	rt := &RefreshToken{
		ID:        uuid.New(),
		Token:     value,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := tokens.Create(ctx, rt); err != nil {
		s.logger.Error("persist refresh token failed", zap.String("user_id", identity.UserID), zap.Error(err))
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          rt.Token,
		RefreshTokenExpiresAt: rt.ExpiresAt,
	}, nil
}

// Rotate exchanges a refresh token and its (possibly expired) access token
// for a new pair. The old refresh token is revoked and linked to its successor.
func (s *tokenService) Rotate(ctx context.Context, accessToken, refreshToken string) (*User, TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, TokenPair{}, autherrors.ErrMissingRefreshToken
	}

	claims, err := s.jwt.ParseIgnoringExpiry(accessToken)
	if err != nil {
		s.logger.Warn("rotate rejected access token", zap.Error(err))
		return nil, TokenPair{}, autherrors.ErrInvalidRefreshToken
	}
	if claims.Subject == "" {
		return nil, TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("rotate begin tx failed", zap.Error(err))
		return nil, TokenPair{}, err
	}
	defer tx.Rollback()

	users := s.users.WithTx(tx)
	tokens := s.tokens.WithTx(tx)

	user, err := users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, TokenPair{}, autherrors.ErrUserNotFound
		}
		return nil, TokenPair{}, err
	}
	if !user.IsActive {
		return nil, TokenPair{}, autherrors.ErrUserNotFound
	}

	stored, err := tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, TokenPair{}, autherrors.ErrInvalidRefreshToken
		}
		return nil, TokenPair{}, err
	}

	now := s.now().UTC()
	if !stored.IsActive(now) || stored.UserID != user.ID {
		s.logger.Warn("rotate rejected refresh token",
			zap.String("user_id", user.ID.String()),
			zap.String("token_id", stored.ID.String()),
			zap.Bool("revoked", stored.RevokedAt != nil),
		)
		return nil, TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	pair, err := s.issue(ctx, tokens, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	stored.RevokedAt = &now
	stored.ReasonRevoked = reasonReplaced
	stored.ReplacedByToken = pair.RefreshToken
	if err := tokens.Update(ctx, stored); err != nil {
		s.logger.Error("rotate revoke old token failed", zap.Error(err))
		return nil, TokenPair{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("rotate commit failed", zap.Error(err))
		return nil, TokenPair{}, err
	}

	s.logger.Info("refresh token rotated", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}

func (s *tokenService) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return autherrors.ErrMissingRefreshToken
	}

	stored, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrInvalidRefreshToken
		}
		return err
	}

	now := s.now().UTC()
	if !stored.IsActive(now) {
		return autherrors.ErrInvalidRefreshToken
	}

	stored.RevokedAt = &now
	stored.ReasonRevoked = reasonRevoked
	if err := s.tokens.Update(ctx, stored); err != nil {
		return err
	}

	s.logger.Info("refresh token revoked", zap.String("user_id", stored.UserID.String()))
	return nil
}

func (s *tokenService) RevokeAll(ctx context.Context, userID, reason string) (int64, error) {
	n, err := s.tokens.RevokeAllForUser(ctx, userID, reason, s.now().UTC())
	if err != nil {
		s.logger.Error("revoke all refresh tokens failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("refresh tokens revoked",
		zap.String("user_id", userID),
		zap.String("reason", reason),
		zap.Int64("count", n),
	)
	return n, nil
}

// Sweep deletes every expired token, revoked or not.
func (s *tokenService) Sweep(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now().UTC())
}

// RunTokenSweeper calls Sweep every interval until ctx is cancelled.
func RunTokenSweeper(ctx context.Context, tokens TokenService, logger *zap.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	log := logger.Named("auth.token_sweeper")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("token sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("token sweeper stopped")
			return
		case <-ticker.C:
			n, err := tokens.Sweep(ctx)
			if err != nil {
				log.Error("sweep expired refresh tokens failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired refresh tokens deleted", zap.Int64("count", n))
			}
		}
	}
}
