package quizmanager

import (
	"math/rand/v2"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
)

// Selector выбирает следующий вопрос викторины среди ещё не заданных.
// Состояние игры целиком приходит от клиента, Selector его не хранит.
type Selector struct {
	intn func(n int) int
}

// NewSelector создаёт селектор с глобальным источником случайности (безопасен для горутин)
func NewSelector() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewSelectorWithSource создаёт селектор с заданной функцией intn, возвращающей число в [0, n)
func NewSelectorWithSource(intn func(n int) int) *Selector {
	if intn == nil {
		intn = rand.IntN
	}
	return &Selector{intn: intn}
}

// Next выбирает один вопрос из candidates, которого нет в excludedIDs.
// Каждый допустимый вопрос выбирается с вероятностью 1/|eligible| за один бросок.
// Если допустимых вопросов нет, возвращает Round со статусом StatusExhausted
// и неизменённым множеством excludedIDs.
func (s *Selector) Next(candidates []entity.Question, excludedIDs []uint) Round {
	previous := dedupe(excludedIDs)
	excluded := make(map[uint]struct{}, len(previous))
	for _, id := range previous {
		excluded[id] = struct{}{}
	}

	eligible := make([]int, 0, len(candidates))
	for i := range candidates {
		if _, seen := excluded[candidates[i].ID]; !seen {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) == 0 {
		return Round{PreviousIDs: previous, Status: StatusExhausted}
	}

	chosen := candidates[eligible[s.intn(len(eligible))]]
	return Round{
		Question:    &chosen,
		PreviousIDs: append(previous, chosen.ID),
		Status:      StatusPlaying,
	}
}

// dedupe убирает повторы, сохраняя порядок первого появления
func dedupe(ids []uint) []uint {
	out := make([]uint, 0, len(ids)+1)
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
