package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewhub/internal/auth"
	"reviewhub/internal/config"
	"reviewhub/internal/mail"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
)

var (
	ErrEmailMismatch           = errors.New("email does not match the registered one")
	ErrEmailInUse              = errors.New("email already in use")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
)

type AuthService interface {
	// SignUp registers a new user or re-issues a confirmation code for an
	// existing one. Either way a fresh code is generated, stored hashed,
	// and dispatched by email.
	SignUp(ctx context.Context, username, email string) (*models.User, error)
	// IssueToken exchanges a confirmation code for a signed access token.
	// A code works once; the stored hash is cleared on success.
	IssueToken(ctx context.Context, username, code string) (string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	mailer     mail.Mailer
	logger     *zap.Logger
	jwtSecret  string
	tokenTTL   time.Duration
	codeLength int
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer mail.Mailer,
	cfg *config.Config,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		mailer:     mailer,
		logger:     logger,
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   cfg.AccessTokenTTL,
		codeLength: cfg.ConfirmationCodeLength,
	}
}

func (s *authService) SignUp(ctx context.Context, username, email string) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		// Resend: the supplied email must match the registered one.
		if user.Email != email {
			return nil, ErrEmailMismatch
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return nil, ErrEmailInUse
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// Concurrent signup with the same username/email loses here.
			if repository.IsUniqueViolation(err) {
				return nil, ErrEmailInUse
			}
			return nil, err
		}
	default:
		return nil, err
	}

	code, err := auth.GenerateConfirmationCode(s.codeLength)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashConfirmationCode(code)
	if err != nil {
		return nil, err
	}
	user.ConfirmationCode = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Fire and forget; delivery failures are logged, not returned.
	go func(to, username, code string) {
		if err := s.mailer.SendConfirmationCode(to, username, code); err != nil {
			s.logger.Error("confirmation code dispatch failed",
				zap.String("username", username),
				zap.Error(err),
			)
		}
	}(user.Email, user.Username, code)

	return user, nil
}

func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.ConfirmationCode == "" || !auth.VerifyConfirmationCode(user.ConfirmationCode, code) {
		return "", ErrInvalidConfirmationCode
	}

	// Single use: a replayed code stays invalid until the next signup.
	user.ConfirmationCode = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	return auth.IssueToken(s.jwtSecret, s.tokenTTL, user)
}
