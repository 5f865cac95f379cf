package auth

import (
	"context"
	"database/sql"
	"time"

	"go-sge/internal/shared/dbtx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=token_repo.go -destination=mock/token_repo_mock.go -package=mock
type TokenRepository interface {
	WithTx(tx *sql.Tx) TokenRepository
	Create(ctx context.Context, token *RefreshToken) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Update(ctx context.Context, token *RefreshToken) error
	RevokeAllForUser(ctx context.Context, userID, reason string, at time.Time) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) WithTx(tx *sql.Tx) TokenRepository {
	return &tokenRepository{db: r.db, tx: tx}
}

func (r *tokenRepository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func (r *tokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	return r.conn(ctx).Omit(clause.Associations).Create(token).Error
}

// FindByToken locks the row so concurrent rotations of one token serialize.
func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	var t RefreshToken
	q := r.conn(ctx)
	if r.tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) Update(ctx context.Context, token *RefreshToken) error {
	return r.conn(ctx).Omit(clause.Associations).Save(token).Error
}

func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID, reason string, at time.Time) (int64, error) {
	res := r.conn(ctx).
		Model(&RefreshToken{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", at).
		Updates(map[string]any{"revoked_at": at, "reason_revoked": reason})
	return res.RowsAffected, res.Error
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.conn(ctx).Where("expires_at < ?", before).Delete(&RefreshToken{})
	return res.RowsAffected, res.Error
}
