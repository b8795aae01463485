package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/domain/repository"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
	"github.com/mycrochip/trivia-api/internal/service/quizmanager"
)

// RoundRecorder учитывает исходы ходов викторины (метрики)
type RoundRecorder interface {
	QuizRound(exhausted bool)
}

// QuizService проводит ходы викторины: выбирает следующий незаданный вопрос
type QuizService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
	selector     *quizmanager.Selector
	recorder     RoundRecorder
	log          zerolog.Logger
}

// NewQuizService создает новый сервис викторин. recorder может быть nil.
func NewQuizService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	selector *quizmanager.Selector,
	recorder RoundRecorder,
	log zerolog.Logger,
) *QuizService {
	if selector == nil {
		selector = quizmanager.NewSelector()
	}
	return &QuizService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		selector:     selector,
		recorder:     recorder,
		log:          log,
	}
}

// NextQuestion выбирает случайный вопрос из scope, которого нет в previousIDs.
// Если категории нет, возвращает apperrors.ErrNotFound. Исчерпание вопросов не ошибка:
// возвращается Round со статусом quizmanager.StatusExhausted.
func (s *QuizService) NextQuestion(ctx context.Context, scope quizmanager.Scope, previousIDs []uint) (quizmanager.Round, error) {
	var (
		candidates []entity.Question
		err        error
	)

	if scope.IsAll() {
		candidates, err = s.questionRepo.ListAll(ctx)
	} else {
		exists, existsErr := s.categoryRepo.Exists(ctx, scope.CategoryID)
		if existsErr != nil {
			return quizmanager.Round{}, existsErr
		}
		if !exists {
			return quizmanager.Round{}, fmt.Errorf("%w: category %d", apperrors.ErrNotFound, scope.CategoryID)
		}
		candidates, err = s.questionRepo.ListByCategory(ctx, scope.CategoryID)
	}
	if err != nil {
		return quizmanager.Round{}, err
	}

	round := s.selector.Next(candidates, previousIDs)
	if s.recorder != nil {
		s.recorder.QuizRound(round.Exhausted())
	}

	event := s.log.Debug().
		Uint("category", scope.CategoryID).
		Int("candidates", len(candidates)).
		Int("previous", len(previousIDs)).
		Str("status", string(round.Status))
	if round.Question != nil {
		event = event.Uint("question_id", round.Question.ID)
	}
	event.Msg("quiz round")

	return round, nil
}
