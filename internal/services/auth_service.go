package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"floryn/internal/apperror"
	"floryn/internal/logger"
	"floryn/internal/models"
	"floryn/internal/repositories"
)

// Claims is the payload of an access token.
type Claims struct {
	ID    uint   `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.StandardClaims
}

// Identity is the caller resolved from a verified token. Role always comes
// from the current users row, never from the token.
type Identity struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

var (
	errInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "invalid email or password")
	errTokenInvalid       = apperror.New(apperror.KindTokenInvalid, "invalid token")
	errTokenExpired       = apperror.New(apperror.KindTokenExpired, "token expired")
)

// Register creates a buyer account and signs it in. Any role in the request
// is ignored.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.New(apperror.KindValidation, "name, email and password are required")
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence("failed to hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleBuyer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Wrap(apperror.KindDuplicateEmail, "email already registered", err)
		}
		return nil, apperror.Persistence("failed to register user", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("user registered", zap.Uint("user_id", user.ID))
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user and returns a signed token. Unknown email and
// wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.New(apperror.KindValidation, "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperror.Persistence("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		ID:    user.ID,
		Role:  user.Role,
		Email: user.Email,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Persistence("failed to generate token", err)
	}
	return signed, nil
}

// VerifyToken checks signature then expiry and resolves the caller from the
// users table. Tokens of deleted users are invalid.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errTokenInvalid
		}
		return nil, apperror.Persistence("failed to load token subject", err)
	}

	return &Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

func (s *AuthService) parseClaims(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errTokenInvalid
	}

	claims := &Claims{}
	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors == jwt.ValidationErrorExpired {
			return nil, errTokenExpired
		}
		return nil, apperror.Wrap(apperror.KindTokenInvalid, errTokenInvalid.Message, err)
	}
	if !token.Valid || claims.ID == 0 || claims.ExpiresAt == 0 {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// Profile returns the stored account of the caller.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found", "failed to load profile")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperror.New(apperror.KindValidation, "current and new password are required")
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "user not found", "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperror.New(apperror.KindInvalidCredentials, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Persistence("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return storeError(err, "user not found", "failed to update password")
	}
	logger.FromCtx(ctx).Info("password changed", zap.Uint("user_id", userID))
	return nil
}
