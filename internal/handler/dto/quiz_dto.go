package dto

import (
	"encoding/json"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// QuizRequest: тело POST /quizzes. Состояние игры целиком передаёт клиент.
type QuizRequest struct {
	PreviousQuestions []FlexInt       `json:"previous_questions"`
	QuizCategory      json.RawMessage `json:"quiz_category"`
}

// QuizResponse: очередной вопрос викторины; Question равен null, когда вопросы закончились
type QuizResponse struct {
	Success           bool              `json:"success"`
	Question          *QuestionResponse `json:"question"`
	PreviousQuestions []uint            `json:"previous_questions"`
}

// NewQuizResponse создает ответ хода викторины
func NewQuizResponse(question *entity.Question, previous []uint) QuizResponse {
	if previous == nil {
		previous = []uint{}
	}
	return QuizResponse{
		Success:           true,
		Question:          NewQuestionResponse(question),
		PreviousQuestions: previous,
	}
}

// CategoryResponse представляет категорию
type CategoryResponse struct {
	ID   uint   `json:"id"`
	Type string `json:"type"`
}
