package repository

import (
	"context"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// CategoryRepository определяет методы чтения категорий
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
}
