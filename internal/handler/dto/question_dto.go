package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// FlexInt принимает целое как JSON-число или строку с числом ("3").
// Пустая строка и null дают 0.
type FlexInt int

// UnmarshalJSON реализует json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*f = 0
		return nil
	}

	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*f = 0
			return nil
		}
	}

	n, err := strconv.ParseFloat(text, 64)
	if err != nil || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("invalid integer %s", raw)
	}
	*f = FlexInt(n)
	return nil
}

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID         uint   `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty int    `json:"difficulty"`
	Category   uint   `json:"category"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:         q.ID,
		Question:   q.Text,
		Answer:     q.Answer,
		Difficulty: q.Difficulty,
		Category:   q.CategoryID,
	}
}

// NewQuestionListResponse создает список DTO; пустой список сериализуется как []
func NewQuestionListResponse(questions []entity.Question) []*QuestionResponse {
	result := make([]*QuestionResponse, 0, len(questions))
	for i := range questions {
		result = append(result, NewQuestionResponse(&questions[i]))
	}
	return result
}

// QuestionListResponse: страница вопросов
type QuestionListResponse struct {
	Success         bool                `json:"success"`
	Questions       []*QuestionResponse `json:"questions"`
	TotalQuestions  int                 `json:"totalQuestions"`
	Categories      map[string]string   `json:"categories,omitempty"`
	CurrentCategory string              `json:"currentCategory"`
}

// QuestionsRequest описывает тело POST /questions, это либо поиск, либо новый вопрос
type QuestionsRequest struct {
	SearchTerm *string  `json:"searchTerm"`
	Question   *string  `json:"question"`
	Answer     *string  `json:"answer"`
	Difficulty *FlexInt `json:"difficulty"`
	Category   *FlexInt `json:"category"`
}

// IsSearch сообщает, что это поисковый запрос (searchTerm непустой)
func (r QuestionsRequest) IsSearch() bool {
	return r.SearchTerm != nil && *r.SearchTerm != ""
}

// ToEntity собирает вопрос из полей запроса. Отсутствующие поля остаются нулевыми
// и отклоняются валидацией сущности.
func (r QuestionsRequest) ToEntity() entity.Question {
	var q entity.Question
	if r.Question != nil {
		q.Text = *r.Question
	}
	if r.Answer != nil {
		q.Answer = *r.Answer
	}
	if r.Difficulty != nil {
		q.Difficulty = int(*r.Difficulty)
	}
	if r.Category != nil && *r.Category > 0 {
		q.CategoryID = uint(*r.Category)
	}
	return q
}

// UpdateQuestionRequest: тело PATCH /questions/:id. difficulty обязательна.
type UpdateQuestionRequest struct {
	Difficulty *FlexInt `json:"difficulty"`
	Question   *string  `json:"question"`
	Answer     *string  `json:"answer"`
	Category   *FlexInt `json:"category"`
}

// ToPatch преобразует запрос в патч сущности
func (r UpdateQuestionRequest) ToPatch() entity.QuestionPatch {
	var patch entity.QuestionPatch
	if r.Difficulty != nil {
		d := int(*r.Difficulty)
		patch.Difficulty = &d
	}
	patch.Text = r.Question
	patch.Answer = r.Answer
	if r.Category != nil {
		var id uint
		if *r.Category > 0 {
			id = uint(*r.Category)
		}
		patch.CategoryID = &id
	}
	return patch
}
