package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/govichain/engine/internal/identity"
	"github.com/govichain/engine/internal/models"
	"github.com/govichain/engine/internal/repository"
	appErr "github.com/govichain/engine/pkg/errors"
	"github.com/govichain/engine/pkg/logger"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	// ResolveToken validates a bearer token and returns the caller identity.
	ResolveToken(tokenString string) (identity.Caller, error)
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     models.Role
}

type authService struct {
	userRepo   repository.UserRepository
	hmacSecret []byte
	tokenTTL   time.Duration
}

func NewAuthService(userRepo repository.UserRepository, secret []byte, tokenTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, hmacSecret: secret, tokenTTL: tokenTTL}
}

var _ AuthService = (*authService)(nil)

func (s *authService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if len(input.Username) < 3 {
		return nil, appErr.New(appErr.CodeInvalid, "username must be at least 3 characters")
	}
	if len(input.Password) < 6 {
		return nil, appErr.New(appErr.CodeInvalid, "password must be at least 6 characters")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, appErr.New(appErr.CodeInvalid, "invalid email address")
	}
	if !input.Role.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown role %q", input.Role)
	}

	ph, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "hash password failed")
	}

	user := &models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(ph),
		Role:         input.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Unique indexes on email and username surface here.
		return nil, appErr.New(appErr.CodeConflict, "email or username already registered")
	}

	logger.L().Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.userRepo.GetByUsername(ctx, username, &user); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthenticated, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, appErr.New(appErr.CodeUnauthenticated, "invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}

	logger.L().Info("user logged in", zap.Uint("user_id", user.ID))
	return tokenString, &user, nil
}

func (s *authService) ResolveToken(tokenString string) (identity.Caller, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.hmacSecret, nil
	})
	if err != nil || !token.Valid {
		return identity.Caller{}, appErr.New(appErr.CodeUnauthenticated, "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Caller{}, appErr.New(appErr.CodeUnauthenticated, "malformed token claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return identity.Caller{}, appErr.New(appErr.CodeUnauthenticated, "malformed subject claim")
	}
	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return identity.Caller{}, appErr.New(appErr.CodeUnauthenticated, "malformed role claim")
	}
	username, _ := claims["username"].(string)

	return identity.Caller{UserID: uint(id), Username: username, Role: role}, nil
}
