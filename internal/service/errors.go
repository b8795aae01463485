package service

import (
	"errors"
	"fmt"

	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

// unprocessable оборачивает ошибку хранилища при изменении данных.
// Ошибки, уже отнесённые к таксономии (не найдено, валидация), не переоборачиваются.
func unprocessable(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrUnprocessable, err)
}
