package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
)

// CategoryService はイベントカテゴリのCRUDを提供する
type CategoryService struct {
	categoryRepo category.Repository
}

func NewCategoryService(cr category.Repository) *CategoryService {
	return &CategoryService{categoryRepo: cr}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*category.Category, error) {
	c := category.NewCategory(name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("カテゴリ作成に失敗: %w", err)
	}
	return c, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, limit, offset int) ([]*category.Category, error) {
	return s.categoryRepo.List(ctx, normalizeLimit(limit), normalizeOffset(offset))
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id, name string) (*category.Category, error) {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.categoryRepo.Delete(ctx, id)
}
