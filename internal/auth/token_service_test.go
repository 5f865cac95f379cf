package auth_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"go-sge/internal/auth"
	autherrors "go-sge/internal/auth/errors"
	authMock "go-sge/internal/auth/mock"
	"go-sge/internal/shared/jwtauth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

const refreshTTL = 7 * 24 * time.Hour

func newJWT(ttl time.Duration) *jwtauth.Manager {
	return jwtauth.NewManager(jwtauth.Config{
		Secret:         []byte("0123456789abcdef0123456789abcdef"),
		Issuer:         "sge-api",
		Audience:       "sge-clients",
		AccessTokenTTL: ttl,
	})
}

type tokenFixture struct {
	svc    auth.TokenService
	users  *authMock.MockRepository
	tokens *authMock.MockTokenRepository
	sql    sqlmock.Sqlmock
	jwt    *jwtauth.Manager
}

func newTokenFixture(t *testing.T) tokenFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := authMock.NewMockRepository(ctrl)
	tokens := authMock.NewMockTokenRepository(ctrl)
	m := newJWT(time.Hour)
	return tokenFixture{
		svc:    auth.NewTokenService(db, users, tokens, m, refreshTTL),
		users:  users,
		tokens: tokens,
		sql:    mock,
		jwt:    m,
	}
}

func activeUser() *auth.User {
	employeeID := uuid.New()
	return &auth.User{
		ID:         uuid.New(),
		UserName:   "jdoe",
		Email:      "jdoe@sge.com",
		EmployeeID: &employeeID,
		IsActive:   true,
		Roles:      []auth.Role{{ID: uuid.New(), Name: auth.RoleUser}},
	}
}

func accessTokenFor(t *testing.T, m *jwtauth.Manager, u *auth.User) string {
	t.Helper()
	token, _, err := m.Mint(jwtauth.Identity{UserID: u.ID.String(), UserName: u.UserName, Email: u.Email})
	require.NoError(t, err)
	return token
}

func TestTokenService_Issue(t *testing.T) {
	f := newTokenFixture(t)
	user := activeUser()

	var stored *auth.RefreshToken
	f.tokens.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rt *auth.RefreshToken) error {
			stored = rt
			return nil
		})

	pair, err := f.svc.Issue(context.Background(), user)
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, pair.RefreshToken, stored.Token)
	assert.WithinDuration(t, time.Now().Add(refreshTTL), stored.ExpiresAt, 5*time.Second)
	assert.Nil(t, stored.RevokedAt)

	raw, err := base64.StdEncoding.DecodeString(pair.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	claims, err := f.jwt.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, []string{auth.RoleUser}, claims.Roles)
	assert.Equal(t, user.EmployeeID.String(), claims.EmployeeID)
}

func TestTokenService_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates and links the old token", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()
		old := &auth.RefreshToken{
			ID:        uuid.New(),
			Token:     "old-token",
			UserID:    user.ID,
			CreatedAt: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(time.Hour),
		}

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "old-token").Return(old, nil)
		f.tokens.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Update(gomock.Any(), old).Return(nil)
		f.sql.ExpectCommit()

		got, pair, err := f.svc.Rotate(ctx, accessTokenFor(t, f.jwt, user), "old-token")
		require.NoError(t, err)

		assert.Equal(t, user.ID, got.ID)
		assert.NotEqual(t, "old-token", pair.RefreshToken)
		require.NotNil(t, old.RevokedAt)
		assert.Equal(t, "replaced by new token", old.ReasonRevoked)
		assert.Equal(t, pair.RefreshToken, old.ReplacedByToken)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("accepts an expired access token", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()
		expired, _, err := newJWT(-time.Hour).Mint(jwtauth.Identity{UserID: user.ID.String()})
		require.NoError(t, err)
		old := &auth.RefreshToken{ID: uuid.New(), Token: "old", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "old").Return(old, nil)
		f.tokens.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Update(gomock.Any(), old).Return(nil)
		f.sql.ExpectCommit()

		_, _, err = f.svc.Rotate(ctx, expired, "old")
		assert.NoError(t, err)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()
		revokedAt := time.Now().Add(-time.Minute)
		old := &auth.RefreshToken{ID: uuid.New(), Token: "old", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "old").Return(old, nil)
		f.sql.ExpectRollback()

		_, _, err := f.svc.Rotate(ctx, accessTokenFor(t, f.jwt, user), "old")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("token owned by another user", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()
		old := &auth.RefreshToken{ID: uuid.New(), Token: "old", UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "old").Return(old, nil)
		f.sql.ExpectRollback()

		_, _, err := f.svc.Rotate(ctx, accessTokenFor(t, f.jwt, user), "old")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "nope").Return(nil, gorm.ErrRecordNotFound)
		f.sql.ExpectRollback()

		_, _, err := f.svc.Rotate(ctx, accessTokenFor(t, f.jwt, user), "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newTokenFixture(t)
		user := activeUser()
		user.IsActive = false

		f.sql.ExpectBegin()
		f.users.EXPECT().WithTx(gomock.Any()).Return(f.users)
		f.tokens.EXPECT().WithTx(gomock.Any()).Return(f.tokens)
		f.users.EXPECT().FindUserByID(gomock.Any(), user.ID.String()).Return(user, nil)
		f.sql.ExpectRollback()

		_, _, err := f.svc.Rotate(ctx, accessTokenFor(t, f.jwt, user), "old")
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})

	t.Run("forged access token", func(t *testing.T) {
		f := newTokenFixture(t)
		other := jwtauth.NewManager(jwtauth.Config{
			Secret:         []byte("ffffffffffffffffffffffffffffffff"),
			Issuer:         "sge-api",
			Audience:       "sge-clients",
			AccessTokenTTL: time.Hour,
		})

		_, _, err := f.svc.Rotate(ctx, accessTokenFor(t, other, activeUser()), "old")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		f := newTokenFixture(t)

		_, _, err := f.svc.Rotate(ctx, "anything", " ")
		assert.ErrorIs(t, err, autherrors.ErrMissingRefreshToken)
	})
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes an active token", func(t *testing.T) {
		f := newTokenFixture(t)
		rt := &auth.RefreshToken{ID: uuid.New(), Token: "t", UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
		f.tokens.EXPECT().FindByToken(gomock.Any(), "t").Return(rt, nil)
		f.tokens.EXPECT().Update(gomock.Any(), rt).Return(nil)

		require.NoError(t, f.svc.Revoke(ctx, "t"))
		require.NotNil(t, rt.RevokedAt)
		assert.Equal(t, "revoked by user", rt.ReasonRevoked)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newTokenFixture(t)
		rt := &auth.RefreshToken{ID: uuid.New(), Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}
		f.tokens.EXPECT().FindByToken(gomock.Any(), "t").Return(rt, nil)

		assert.ErrorIs(t, f.svc.Revoke(ctx, "t"), autherrors.ErrInvalidRefreshToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newTokenFixture(t)
		f.tokens.EXPECT().FindByToken(gomock.Any(), "t").Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, f.svc.Revoke(ctx, "t"), autherrors.ErrInvalidRefreshToken)
	})

	t.Run("already revoked token", func(t *testing.T) {
		f := newTokenFixture(t)
		revokedAt := time.Now().Add(-time.Minute)
		rt := &auth.RefreshToken{ID: uuid.New(), Token: "t", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt}
		f.tokens.EXPECT().FindByToken(gomock.Any(), "t").Return(rt, nil)
		f.tokens.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

		assert.ErrorIs(t, f.svc.Revoke(ctx, "t"), autherrors.ErrInvalidRefreshToken)
		assert.Equal(t, revokedAt, *rt.RevokedAt)
	})
}

func TestTokenService_RevokeAllAndSweep(t *testing.T) {
	f := newTokenFixture(t)
	userID := uuid.NewString()

	f.tokens.EXPECT().RevokeAllForUser(gomock.Any(), userID, "user logged out", gomock.Any()).Return(int64(2), nil)
	n, err := f.svc.RevokeAll(context.Background(), userID, "user logged out")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	f.tokens.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).Return(int64(3), nil)
	n, err = f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRefreshToken_IsActive(t *testing.T) {
	now := time.Now()
	revokedAt := now.Add(-time.Second)

	assert.True(t, auth.RefreshToken{ExpiresAt: now.Add(time.Minute)}.IsActive(now))
	assert.False(t, auth.RefreshToken{ExpiresAt: now}.IsActive(now))
	assert.False(t, auth.RefreshToken{ExpiresAt: now.Add(time.Minute), RevokedAt: &revokedAt}.IsActive(now))
}
