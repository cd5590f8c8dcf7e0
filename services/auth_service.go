package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/academy-system/models"
	"github.com/Dosada05/academy-system/repositories"
	"github.com/Dosada05/academy-system/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, *models.Academy, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type RegisterInput struct {
	AcademyName string `json:"academy_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

// Register creates a new academy together with its owner account.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, *models.Academy, error) {
	name := strings.TrimSpace(input.AcademyName)
	if name == "" {
		return nil, nil, ErrAcademyNameRequired
	}
	email := utils.NormalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, nil, ErrInvalidEmail
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	academy := &models.Academy{Name: name}
	owner := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleOwner,
	}

	err = s.userRepo.CreateAcademyWithOwner(ctx, academy, owner)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrAcademyNameConflict):
			return nil, nil, ErrAcademyNameConflict
		default:
			return nil, nil, fmt.Errorf("failed to register academy: %w", err)
		}
	}

	owner.PasswordHash = ""
	return owner, academy, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
