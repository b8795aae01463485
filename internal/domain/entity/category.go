package entity

import "strconv"

// Category представляет категорию вопросов
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"not null" json:"type"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// CategoryMap превращает список категорий в словарь {"id": "type"},
// в котором клиенты ожидают категории
func CategoryMap(categories []Category) map[string]string {
	items := make(map[string]string, len(categories))
	for _, c := range categories {
		items[strconv.FormatUint(uint64(c.ID), 10)] = c.Type
	}
	return items
}
