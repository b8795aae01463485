package entity

import (
	"fmt"
	"strings"

	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

// Границы допустимой сложности вопроса
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Question представляет вопрос викторины
type Question struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Text       string `gorm:"column:question;not null" json:"question"`
	Answer     string `gorm:"not null" json:"answer"`
	CategoryID uint   `gorm:"column:category;not null;index" json:"category"`
	Difficulty int    `gorm:"not null" json:"difficulty"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// Validate проверяет, что все обязательные поля заполнены.
// Пустые строки из одних пробелов считаются незаполненными.
func (q *Question) Validate() error {
	var missing []string
	if strings.TrimSpace(q.Text) == "" {
		missing = append(missing, "question")
	}
	if strings.TrimSpace(q.Answer) == "" {
		missing = append(missing, "answer")
	}
	if q.CategoryID == 0 {
		missing = append(missing, "category")
	}
	if q.Difficulty == 0 {
		missing = append(missing, "difficulty")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return ValidateDifficulty(q.Difficulty)
}

// ValidateDifficulty проверяет, что сложность лежит в допустимом диапазоне
func ValidateDifficulty(difficulty int) error {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty must be between %d and %d, got %d",
			apperrors.ErrValidation, MinDifficulty, MaxDifficulty, difficulty)
	}
	return nil
}

// QuestionPatch содержит поля для частичного обновления вопроса.
// nil означает "не менять".
type QuestionPatch struct {
	Text       *string
	Answer     *string
	CategoryID *uint
	Difficulty *int
}

// IsEmpty сообщает, что патч ничего не меняет
func (p QuestionPatch) IsEmpty() bool {
	return p.Text == nil && p.Answer == nil && p.CategoryID == nil && p.Difficulty == nil
}

// Apply применяет патч к вопросу и проверяет результат
func (p QuestionPatch) Apply(q *Question) error {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Answer != nil {
		q.Answer = *p.Answer
	}
	if p.CategoryID != nil {
		q.CategoryID = *p.CategoryID
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	return q.Validate()
}
