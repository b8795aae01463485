package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// session возвращает сессию, привязанную к контексту запроса
func (r *QuestionRepo) session(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// ListAll возвращает все вопросы
func (r *QuestionRepo) ListAll(ctx context.Context) ([]entity.Question, error) {
	var questions []entity.Question
	if err := r.session(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// ListByCategory возвращает вопросы одной категории
func (r *QuestionRepo) ListByCategory(ctx context.Context, categoryID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.session(ctx).Where("category = ?", categoryID).Order("id").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list questions of category %d: %w", categoryID, err)
	}
	return questions, nil
}

// Search ищет вопросы по подстроке без учёта регистра.
// Символы % и _ в term ищутся буквально.
func (r *QuestionRepo) Search(ctx context.Context, term string) ([]entity.Question, error) {
	var questions []entity.Question
	pattern := "%" + escapeLike(term) + "%"
	err := r.session(ctx).Where("question ILIKE ?", pattern).Order("id").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	return questions, nil
}

// ListAfter возвращает до limit вопросов с id больше afterID.
// Вставки и удаления между вызовами не сдвигают следующую пачку, в отличие от OFFSET.
func (r *QuestionRepo) ListAfter(ctx context.Context, afterID uint, limit int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.session(ctx).Where("id > ?", afterID).Order("id").Limit(limit).Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list questions after %d: %w", afterID, err)
	}
	return questions, nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.session(ctx).First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return &question, nil
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	if err := r.session(ctx).Create(question).Error; err != nil {
		return translateWriteError("create question", err)
	}
	return nil
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
	if err != nil {
		return translateWriteError("create question batch", err)
	}
	return nil
}

// UpdateDifficulty меняет только сложность вопроса и возвращает обновлённую запись
func (r *QuestionRepo) UpdateDifficulty(ctx context.Context, id uint, difficulty int) (*entity.Question, error) {
	var question entity.Question
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Question{}).Where("id = ?", id).Update("difficulty", difficulty)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return tx.First(&question, id).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, translateWriteError(fmt.Sprintf("update difficulty of question %d", id), err)
	}
	return &question, nil
}

// Update сохраняет все изменяемые поля вопроса
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	result := r.session(ctx).Model(&entity.Question{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
		"question":   question.Text,
		"answer":     question.Answer,
		"category":   question.CategoryID,
		"difficulty": question.Difficulty,
	})
	if result.Error != nil {
		return translateWriteError(fmt.Sprintf("update question %d", question.ID), result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	result := r.session(ctx).Delete(&entity.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete question %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Count возвращает общее количество вопросов
func (r *QuestionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.session(ctx).Model(&entity.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// translateWriteError переводит нарушения ограничений БД в ErrValidation
func translateWriteError(op string, err error) error {
	if isForeignKeyViolation(err) || isNotNullViolation(err) {
		return fmt.Errorf("%s: %w: %v", op, apperrors.ErrValidation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
