package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE коды, которые репозитории переводят в ошибки приложения
const (
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// pgErrorCode достаёт SQLSTATE из ошибки драйвера. gorm.io/driver/postgres
// работает поверх pgx/v5, поэтому других типов ошибок здесь не бывает.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isForeignKeyViolation проверяет нарушение внешнего ключа (например, несуществующая категория)
func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// isNotNullViolation проверяет нарушение NOT NULL
func isNotNullViolation(err error) bool {
	return pgErrorCode(err) == pgNotNullViolation
}
