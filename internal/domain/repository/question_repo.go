package repository

import (
	"context"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами.
// Все списки упорядочены по id по возрастанию.
type QuestionRepository interface {
	ListAll(ctx context.Context) ([]entity.Question, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]entity.Question, error)
	// Search ищет вопросы, текст которых содержит term без учёта регистра
	Search(ctx context.Context, term string) ([]entity.Question, error)
	// ListAfter возвращает до limit вопросов с id > afterID (keyset-пагинация)
	ListAfter(ctx context.Context, afterID uint, limit int) ([]entity.Question, error)
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	Create(ctx context.Context, question *entity.Question) error
	// CreateBatch создаёт все вопросы в одной транзакции
	CreateBatch(ctx context.Context, questions []entity.Question) error
	UpdateDifficulty(ctx context.Context, id uint, difficulty int) (*entity.Question, error)
	Update(ctx context.Context, question *entity.Question) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
