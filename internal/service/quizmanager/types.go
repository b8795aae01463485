package quizmanager

import (
	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// RoundStatus: состояние игры после очередного хода
type RoundStatus string

const (
	// StatusPlaying: вопрос выбран, игра продолжается
	StatusPlaying RoundStatus = "playing"
	// StatusExhausted: в категории не осталось незаданных вопросов; конечное состояние
	StatusExhausted RoundStatus = "exhausted"
)

// Scope задаёт, из каких вопросов выбирать: одна категория или все.
// Нулевое значение означает все категории.
type Scope struct {
	CategoryID uint
}

// AllCategories возвращает Scope по всем категориям
func AllCategories() Scope {
	return Scope{}
}

// CategoryScope возвращает Scope одной категории
func CategoryScope(categoryID uint) Scope {
	return Scope{CategoryID: categoryID}
}

// IsAll сообщает, что выбор идёт по всем категориям
func (s Scope) IsAll() bool {
	return s.CategoryID == 0
}

// Round: результат одного хода викторины
type Round struct {
	// Question: выбранный вопрос; nil, если вопросы закончились
	Question *entity.Question
	// PreviousIDs: множество уже заданных вопросов с учётом выбранного
	PreviousIDs []uint
	Status      RoundStatus
}

// Exhausted сообщает, что вопросов больше нет
func (r Round) Exhausted() bool {
	return r.Status == StatusExhausted
}
