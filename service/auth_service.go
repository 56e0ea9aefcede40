package service

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"devsphere-api/config"
	"devsphere-api/logger"
	"devsphere-api/model"
	"devsphere-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken = errors.New("email already registered")

	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")
)

const uniqueViolation = pq.ErrorCode("23505")

// TokenPair bundles the short-lived access token with the opaque refresh
// token that backs it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// AuthResult is what every successful auth flow hands back to the handler.
type AuthResult struct {
	User *model.User
	TokenPair
}

// IAuthService defines the contract for the authentication flows.
type IAuthService interface {
	Signup(req *model.SignupRequest) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Refresh(refreshToken string) (*AuthResult, error)
	Logout(refreshToken string) error
	CurrentUser(userID int) (*model.User, error)
	RefreshTokenTTL() time.Duration
	PurgeExpiredTokens() (int64, error)
}

// AuthService owns signup, login, token refresh and logout. It holds the raw
// *sql.DB besides the repositories because the multi-statement flows (signup,
// login) must run inside a single transaction.
type AuthService struct {
	db        *sql.DB
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	infoRepo  repository.IUserInfoRepository
}

func NewAuthService(db *sql.DB, userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, infoRepo repository.IUserInfoRepository) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		infoRepo:  infoRepo,
	}
}

// Signup creates the user, its empty profile row and the first refresh token
// in one transaction, then issues the access token.
func (s *AuthService) Signup(req *model.SignupRequest) (*AuthResult, error) {
	if taken, err := s.userRepo.EmailExists(req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.userRepo.UsernameExists(req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: hashed,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.userRepo.CreateUser(tx, user); err != nil {
		return nil, mapUniqueViolation(err)
	}
	if err := s.infoRepo.Create(tx, user.UserID); err != nil {
		return nil, err
	}

	refreshToken, err := s.issueRefreshToken(tx, user.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	accessToken, err := GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &AuthResult{User: user, TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}}, nil
}

// Login verifies credentials, then replaces any previously issued refresh
// tokens with a fresh one. Delete and insert share a transaction so the user
// cannot be left between sessions by a partial failure.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.tokenRepo.DeleteByUserID(tx, user.UserID); err != nil {
		return nil, err
	}
	refreshToken, err := s.issueRefreshToken(tx, user.UserID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	accessToken, err := GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return &AuthResult{User: user, TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}}, nil
}

// Refresh rotates the presented token. The rotation is a single conditional
// UPDATE keyed on the old value, so reusing a rotated token finds no row and
// fails.
func (s *AuthService) Refresh(refreshToken string) (*AuthResult, error) {
	newToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	userID, err := s.tokenRepo.Rotate(refreshToken, newToken, time.Now().Add(s.RefreshTokenTTL()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: newToken}}, nil
}

// Logout drops the presented refresh token. Unknown tokens are ignored, so
// repeating a logout is harmless.
func (s *AuthService) Logout(refreshToken string) error {
	return s.tokenRepo.DeleteByToken(refreshToken)
}

// CurrentUser resolves the public profile of the authenticated caller.
func (s *AuthService) CurrentUser(userID int) (*model.User, error) {
	return s.userRepo.GetUserByID(userID)
}

// RefreshTokenTTL reports the configured refresh token lifetime.
func (s *AuthService) RefreshTokenTTL() time.Duration {
	days := config.AppConfig.JWT.RefreshTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// PurgeExpiredTokens removes refresh tokens past their expiry. Wired to the
// hourly maintenance job.
func (s *AuthService) PurgeExpiredTokens() (int64, error) {
	purged, err := s.tokenRepo.DeleteExpired()
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		logger.Log.WithField("count", purged).Info("Purged expired refresh tokens")
	}
	return purged, nil
}

func (s *AuthService) issueRefreshToken(tx *sql.Tx, userID int) (string, error) {
	value, err := GenerateRefreshToken()
	if err != nil {
		return "", err
	}
	token := &model.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(s.RefreshTokenTTL()),
	}
	if err := s.tokenRepo.Create(tx, token); err != nil {
		return "", err
	}
	return value, nil
}

// mapUniqueViolation translates a unique-constraint race on insert into the
// same conflict errors as the pre-insert existence checks.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint == "users_username_key" {
			return ErrUsernameTaken
		}
		return ErrEmailTaken
	}
	return err
}

func getJwtKey() []byte {
	return []byte(config.AppConfig.JWT.SecretKey)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateAccessToken signs a short-lived HS256 token carrying the caller's
// identity claims.
func GenerateAccessToken(user *model.User) (string, error) {
	ttl := time.Duration(config.AppConfig.JWT.AccessTTLMins) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	now := time.Now()
	claims := &model.AppClaims{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.UserID),
			Issuer:    "devsphere",
			Audience:  jwt.ClaimStrings{"devsphere-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(getJwtKey())
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.UserID).Error("Failed to sign access token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// VerifyAccessToken parses and validates a bearer token, returning its claims.
func VerifyAccessToken(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getJwtKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// GenerateRefreshToken mints an opaque 64-byte random token, hex encoded.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
