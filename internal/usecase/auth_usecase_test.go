package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var testJWTSecret = []byte("test_secret")

func newAuthFixture() (*usecase.AuthUsecase, *UserRepoMock) {
	users := new(UserRepoMock)

	//テストはcost最小で回す
	hasher := usecase.NewBcryptPasswordHasher(4)
	verifier := usecase.NewBcryptPasswordVerifier()
	issuer := usecase.NewJWTIssuer(testJWTSecret, 15*time.Minute)

	return usecase.NewAuthUsecase(users, hasher, verifier, issuer), users
}

func TestRegister_InvalidEmail(t *testing.T) {
	uc, _ := newAuthFixture()

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "not-an-email",
		Password: "long-enough-password",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	uc, _ := newAuthFixture()

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "a@example.com",
		Password: "short",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	uc, users := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{ID: 1, Email: "a@example.com"}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "a@example.com",
		Password: "long-enough-password",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_SuccessIssuesToken(t *testing.T) {
	uc, users := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		//平文は保存しない
		return u.Email == "a@example.com" && u.PasswordHash != "long-enough-password" && u.IsActive
	})).Return(model.User{ID: 42, Email: "a@example.com"}, nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "A@Example.com",
		Password: "long-enough-password",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.UserID)

	//発行されたトークンが検証できてsubが合っている
	token, err := jwt.Parse(out.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return testJWTSecret, nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["sub"])
}

func TestLogin_WrongPassword(t *testing.T) {
	uc, users := newAuthFixture()

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-password-123")

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{
		ID:           1,
		Email:        "a@example.com",
		PasswordHash: hashed,
		IsActive:     true,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "a@example.com",
		Password: "wrong-password",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	uc, users := newAuthFixture()

	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(model.User{}, repo.ErrNotFound)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	assert.Equal(t, "invalid credentials", he.Message)
}

func TestLogin_InactiveUser(t *testing.T) {
	uc, users := newAuthFixture()

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-password-123")

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{
		ID:           1,
		Email:        "a@example.com",
		PasswordHash: hashed,
		IsActive:     false,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "a@example.com",
		Password: "correct-password-123",
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Status)
}

func TestLogin_Success(t *testing.T) {
	uc, users := newAuthFixture()

	hasher := usecase.NewBcryptPasswordHasher(4)
	hashed, _ := hasher.Hash("correct-password-123")

	users.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{
		ID:           1,
		Email:        "a@example.com",
		PasswordHash: hashed,
		IsActive:     true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, int64(1)).Return(nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "a@example.com",
		Password: "correct-password-123",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.UserID)
	assert.NotEmpty(t, out.AccessToken)
	users.AssertCalled(t, "UpdateLastLogin", mock.Anything, int64(1))
}
