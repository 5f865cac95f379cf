package auth_test

import (
	"context"
	"testing"
	"time"

	"go-sge/internal/auth"
	autherrors "go-sge/internal/auth/errors"
	authMock "go-sge/internal/auth/mock"
	"go-sge/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (auth.Service, *authMock.MockRepository, *authMock.MockTokenService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := authMock.NewMockRepository(ctrl)
	tokens := authMock.NewMockTokenService(ctrl)
	return auth.NewService(repo, tokens), repo, tokens
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func samplePair() auth.TokenPair {
	return auth.TokenPair{
		AccessToken:           "access",
		AccessTokenExpiresAt:  time.Now().Add(time.Hour),
		RefreshToken:          "refresh",
		RefreshTokenExpiresAt: time.Now().Add(refreshTTL),
	}
}

func validRegistration() auth.RegisterRequest {
	return auth.RegisterRequest{
		UserName:        "jdoe",
		Email:           "JDoe@SGE.com",
		Password:        "Secret123!",
		ConfirmPassword: "Secret123!",
		FirstName:       "John",
		LastName:        "Doe",
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	role := &auth.Role{ID: uuid.New(), Name: auth.RoleUser}

	t.Run("creates user with the User role", func(t *testing.T) {
		svc, repo, tokens := newAuthService(t)

		repo.EXPECT().ExistsByEmail(ctx, "jdoe@sge.com").Return(false, nil)
		repo.EXPECT().FindRoleByName(ctx, auth.RoleUser).Return(role, nil)
		repo.EXPECT().CreateUser(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u *auth.User) error {
				assert.Equal(t, "jdoe@sge.com", u.Email)
				assert.True(t, u.IsActive)
				assert.Equal(t, []string{auth.RoleUser}, u.RoleNames())
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret123!")))
				return nil
			})
		tokens.EXPECT().Issue(ctx, gomock.Any()).Return(samplePair(), nil)

		resp, err := svc.Register(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
		assert.Equal(t, []string{auth.RoleUser}, resp.User.Roles)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().ExistsByEmail(ctx, "jdoe@sge.com").Return(true, nil)

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})

	t.Run("password mismatch", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)

		req := validRegistration()
		req.ConfirmPassword = "Other123!"
		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, autherrors.ErrPasswordMismatch)
	})

	t.Run("invalid employee id", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)

		req := validRegistration()
		req.EmployeeID = "not-a-uuid"
		_, err := svc.Register(ctx, req)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		details, ok := apperror.ValidationDetails(appErr)
		require.True(t, ok)
		assert.Contains(t, details, "employee_id")
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		repo.EXPECT().FindRoleByName(ctx, auth.RoleUser).Return(role, nil)
		repo.EXPECT().CreateUser(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"})

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})

	t.Run("default role missing", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		repo.EXPECT().FindRoleByName(ctx, auth.RoleUser).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, autherrors.ErrRoleNotFound)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	newUser := func(t *testing.T) *auth.User {
		return &auth.User{
			ID:           uuid.New(),
			UserName:     "admin",
			Email:        "admin@sge.com",
			PasswordHash: hashed(t, "Admin123!"),
			IsActive:     true,
			Roles:        []auth.Role{{Name: auth.RoleAdmin}},
		}
	}

	t.Run("success updates last login", func(t *testing.T) {
		svc, repo, tokens := newAuthService(t)
		user := newUser(t)

		repo.EXPECT().FindUserByEmail(ctx, "admin@sge.com").Return(user, nil)
		repo.EXPECT().TouchLastLogin(ctx, user).Return(nil)
		tokens.EXPECT().Issue(ctx, user).Return(samplePair(), nil)

		resp, err := svc.Login(ctx, auth.LoginRequest{Email: "admin@sge.com", Password: "Admin123!"})
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
		assert.Equal(t, []string{auth.RoleAdmin}, resp.User.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().FindUserByEmail(ctx, "admin@sge.com").Return(newUser(t), nil)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "admin@sge.com", Password: "nope"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		repo.EXPECT().FindUserByEmail(ctx, "ghost@sge.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "ghost@sge.com", Password: "x"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		user := newUser(t)
		user.IsActive = false
		repo.EXPECT().FindUserByEmail(ctx, "admin@sge.com").Return(user, nil)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "admin@sge.com", Password: "Admin123!"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestService_RefreshAndRevoke(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthService(t)
	user := activeUser()

	tokens.EXPECT().Rotate(ctx, "access", "refresh").Return(user, samplePair(), nil)
	resp, err := svc.RefreshToken(ctx, "access", "refresh")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), resp.User.ID)

	tokens.EXPECT().Rotate(ctx, "access", "stale").Return(nil, auth.TokenPair{}, autherrors.ErrInvalidRefreshToken)
	_, err = svc.RefreshToken(ctx, "access", "stale")
	assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)

	tokens.EXPECT().Revoke(ctx, "refresh").Return(nil)
	assert.NoError(t, svc.RevokeToken(ctx, "refresh"))
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthService(t)
	userID := uuid.NewString()

	tokens.EXPECT().RevokeAll(ctx, userID, "user logged out").Return(int64(1), nil)
	assert.NoError(t, svc.Logout(ctx, userID))

	assert.ErrorIs(t, svc.Logout(ctx, "bad"), autherrors.ErrInvalidUserID)
}

func TestService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		user := activeUser()
		repo.EXPECT().FindUserByID(ctx, user.ID.String()).Return(user, nil)

		resp, err := svc.GetMe(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.Email, resp.Email)
		assert.Equal(t, user.EmployeeID.String(), resp.EmployeeID)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := newAuthService(t)
		id := uuid.NewString()
		repo.EXPECT().FindUserByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetMe(ctx, id)
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}
