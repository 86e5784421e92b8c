package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
	"github.com/macedolvs/custodia-backend/internal/requestdata"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password
// so login failures are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Register(ctx context.Context, input RegisterUserInput) (*types.User, error)
	Login(ctx context.Context, username, password string) (string, *types.User, error)

	// SetContextFromToken validates the bearer token and attaches the
	// authenticated operator to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type RegisterUserInput struct {
	Username  string
	Password  string
	Nome      string
	Graduacao string
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, jwtSecret string, tokenTTL time.Duration) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:        db,
		log:       serviceLog,
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterUserInput) (*types.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: username e senha obrigatórios", custody.ErrValidation)
	}
	graduacao := strings.ToUpper(strings.TrimSpace(input.Graduacao))
	if graduacao != "" && !custody.GraduacaoValida(graduacao) {
		return nil, fmt.Errorf("%w: graduação %q", custody.ErrValidation, input.Graduacao)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  string(hash),
		Nome:      strings.ToUpper(strings.TrimSpace(input.Nome)),
		Graduacao: graduacao,
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.userRepo.Create(dbc, []*types.User{user}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username %s", custody.ErrDuplicateKey, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("operador registrado", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *types.User, error) {
	uname := strings.ToLower(strings.TrimSpace(username))
	dbc := dbctx.Context{Ctx: ctx}
	users, err := s.userRepo.GetByUsernames(dbc, []string{uname})
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return "", nil, ErrInvalidCredentials
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("login", "user_id", user.ID, "username", uname)
	return token, user, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ctx, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ctx, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, ErrInvalidCredentials
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return ctx, ErrInvalidCredentials
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Username:    user.Username,
	}), nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	dbc := dbctx.Context{Ctx: ctx}
	users, err := s.userRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", custody.ErrNotFound, id)
	}
	return users[0], nil
}
