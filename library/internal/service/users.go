package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Astemirdum/biblioteca-service/library/internal/model"
)

func (s *Service) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}
	role := req.Role
	if role == "" {
		role = model.RoleReader
	}
	return s.repo.CreateUser(ctx, model.User{
		Username:     strings.TrimSpace(req.Username),
		Name:         strings.TrimSpace(req.Name),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		DNI:          strings.TrimSpace(req.DNI),
		Role:         role,
		PasswordHash: string(hash),
	})
}

func (s *Service) GetUser(ctx context.Context, userRef string) (model.User, error) {
	return s.repo.GetUser(ctx, userRef)
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}
