// Package pagination режет упорядоченные списки на страницы фиксированного размера.
package pagination

import (
	"math"
	"strconv"
)

// PageSize: количество элементов на странице
const PageSize = 10

// ParsePage разбирает номер страницы из query-параметра.
// Пустое, нечисловое или меньшее 1 значение даёт первую страницу.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset возвращает индекс первого элемента страницы page (1-based).
// При переполнении (page-1)*size возвращает math.MaxInt: такая страница заведомо пуста.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// Paginate возвращает элементы [(page-1)*size, page*size), обрезанные по границам items.
// Страница за пределами списка даёт пустой (не nil) срез.
func Paginate[T any](items []T, page, size int) []T {
	start := Offset(page, size)
	if size <= 0 || start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) || end < start {
		end = len(items)
	}
	return items[start:end]
}
