package helper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mycrochip/trivia-api/internal/handler/dto"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
	"github.com/mycrochip/trivia-api/internal/service/quizmanager"
)

// DecodeObject разбирает тело запроса, которое обязано быть JSON-объектом.
// На пустое тело, массив, скаляр или битый JSON возвращает apperrors.ErrBadRequest.
func DecodeObject(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: body must be a JSON object", apperrors.ErrBadRequest)
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	return nil
}

// quizCategoryObject: форма {id, type}, которую присылает фронтенд
type quizCategoryObject struct {
	ID   *dto.FlexInt `json:"id"`
	Type string       `json:"type"`
}

// isAllAlias сообщает, что строка обозначает "все категории"
func isAllAlias(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all") || strings.EqualFold(s, "click")
}

// ParseQuizCategory преобразует quiz_category в Scope.
// Все категории: отсутствие поля, null, 0, "All" в любом регистре, {type:"click"}, {id:0}.
// Одна категория: число, строка с числом или {id:N}.
func ParseQuizCategory(raw json.RawMessage) (quizmanager.Scope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return quizmanager.AllCategories(), nil
	}

	switch raw[0] {
	case '{':
		var obj quizCategoryObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return quizmanager.Scope{}, fmt.Errorf("%w: quiz_category: %v", apperrors.ErrBadRequest, err)
		}
		if obj.ID == nil {
			if isAllAlias(obj.Type) {
				return quizmanager.AllCategories(), nil
			}
			return quizmanager.Scope{}, fmt.Errorf("%w: quiz_category has no id", apperrors.ErrBadRequest)
		}
		return scopeFromID(int(*obj.ID))
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return quizmanager.Scope{}, fmt.Errorf("%w: quiz_category: %v", apperrors.ErrBadRequest, err)
		}
		if isAllAlias(s) {
			return quizmanager.AllCategories(), nil
		}
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return quizmanager.Scope{}, fmt.Errorf("%w: quiz_category %q", apperrors.ErrBadRequest, s)
		}
		return scopeFromID(id)
	default:
		var id dto.FlexInt
		if err := json.Unmarshal(raw, &id); err != nil {
			return quizmanager.Scope{}, fmt.Errorf("%w: quiz_category: %v", apperrors.ErrBadRequest, err)
		}
		return scopeFromID(int(id))
	}
}

func scopeFromID(id int) (quizmanager.Scope, error) {
	switch {
	case id < 0:
		return quizmanager.Scope{}, fmt.Errorf("%w: negative quiz_category %d", apperrors.ErrBadRequest, id)
	case id == 0:
		return quizmanager.AllCategories(), nil
	default:
		return quizmanager.CategoryScope(uint(id)), nil
	}
}

// ConvertPreviousIDs переводит previous_questions в идентификаторы вопросов
func ConvertPreviousIDs(ids []dto.FlexInt) ([]uint, error) {
	converted := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id < 0 {
			return nil, fmt.Errorf("%w: negative question id %d", apperrors.ErrBadRequest, id)
		}
		converted = append(converted, uint(id))
	}
	return converted, nil
}
