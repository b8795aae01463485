package errors

import "errors"

// Общие ошибки приложения. Каждая ошибка соответствует одному виду ответа API.
var (
	// ErrNotFound используется, когда запись не найдена или листинг пуст.
	ErrNotFound = errors.New("record not found")

	// ErrBadRequest используется для запросов неверной формы (не JSON, неверные типы полей).
	ErrBadRequest = errors.New("bad request")

	// ErrValidation используется, когда форма запроса верна, но обязательные поля пусты
	// или ссылаются на несуществующие записи.
	ErrValidation = errors.New("validation failed")

	// ErrUnprocessable используется, когда операция не может быть завершена хранилищем.
	ErrUnprocessable = errors.New("unprocessable")
)
