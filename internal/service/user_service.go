package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, email, name string) (*models.User, error) {
	if email == "" {
		return nil, validationf("Не передан email")
	}

	user := &models.User{Email: email, Name: name}
	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, database.ErrEmailTaken) {
		return nil, conflictf("Пользователь с email %s уже существует", email)
	}
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// UpdateUser меняет только переданные поля; email остается уникальным.
func (s *UserService) UpdateUser(ctx context.Context, id int64, email, name string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Пользователь (id = %d) не найден", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if email != "" {
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}

	err = s.users.UpdateUser(ctx, user)
	if errors.Is(err, database.ErrEmailTaken) {
		return nil, conflictf("Пользователь с email %s уже существует", user.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundf("Пользователь (id = %d) не найден", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.users.DeleteUser(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAllUsers(ctx)
}
