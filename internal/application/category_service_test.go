package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("正常にカテゴリを作成できる", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		repo.On("Create", ctx, mock.MatchedBy(func(c *category.Category) bool {
			return c.Name == "テクノロジー"
		})).Return(nil)

		c, err := svc.CreateCategory(ctx, "テクノロジー")

		require.NoError(t, err)
		assert.Equal(t, "テクノロジー", c.Name)
		repo.AssertExpectations(t)
	})

	t.Run("名前未指定の場合は失敗", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		_, err := svc.CreateCategory(ctx, "")

		assert.ErrorIs(t, err, category.ErrNameRequired)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("カテゴリ名が重複している場合は失敗", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		repo.On("Create", ctx, mock.Anything).Return(category.ErrCategoryNameExists)

		_, err := svc.CreateCategory(ctx, "テクノロジー")

		assert.ErrorIs(t, err, category.ErrCategoryNameExists)
	})
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("正常にカテゴリ名を変更できる", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		existing := &category.Category{ID: "cat-1", Name: "旧名称"}

		repo.On("GetByID", ctx, "cat-1").Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		c, err := svc.UpdateCategory(ctx, "cat-1", "新名称")

		require.NoError(t, err)
		assert.Equal(t, "新名称", c.Name)
	})

	t.Run("存在しないカテゴリの変更は失敗", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		repo.On("GetByID", ctx, "ghost").Return(nil, category.ErrCategoryNotFound)

		_, err := svc.UpdateCategory(ctx, "ghost", "新名称")

		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("使用中のカテゴリは削除できない", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		repo.On("Delete", ctx, "cat-1").Return(category.ErrCategoryInUse)

		err := svc.DeleteCategory(ctx, "cat-1")

		assert.ErrorIs(t, err, category.ErrCategoryInUse)
	})
}
