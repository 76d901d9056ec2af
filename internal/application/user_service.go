package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-event-participation/internal/domain/user"
)

// UserService はユーザーの管理者向けCRUDを提供する
type UserService struct {
	userRepo user.Repository
}

func NewUserService(ur user.Repository) *UserService {
	return &UserService{userRepo: ur}
}

type CreateUserInput struct {
	Name  string
	Email string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*user.User, error) {
	u := user.NewUser(input.Name, input.Email)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("ユーザー作成に失敗: %w", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, ids []string, limit, offset int) ([]*user.User, error) {
	return s.userRepo.List(ctx, ids, normalizeLimit(limit), normalizeOffset(offset))
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}
