package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, now time.Time) (token string, expiresAt time.Time, err error)
}

type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret []byte, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, accessTTL: accessTTL}
}

func (i *JWTIssuer) Issue(userID int64, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// AuthUsecase は会員登録とログイン。
// 認証済みIDを各操作へ明示的に渡すための入口で、それ以上のことはしない。
type AuthUsecase struct {
	userRepo repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
}

// DI
func NewAuthUsecase(
	userRepo repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// emailの形式チェック
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusBadRequest, "invalid email format")
	}

	// passwordの長さチェック（最小12文字）
	if len(in.Password) < 12 {
		return AuthResponse{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	// email重複チェック
	_, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return AuthResponse{}, NewHTTPError(http.StatusConflict, "email already exists")
	}
	if err != repo.ErrNotFound {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "hash error")
	}

	now := time.Now()
	user, err := u.userRepo.Create(ctx, model.User{
		Email:        email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, now)
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}

	return AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthResponse{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err == repo.ErrNotFound {
		//ユーザーの有無は外から区別できないようにする
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !user.IsActive {
		return AuthResponse{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return AuthResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, now)
	if err != nil {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID); err != nil && err != repo.ErrNotFound {
		return AuthResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
