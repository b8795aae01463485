package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/domain/repository"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
	"github.com/mycrochip/trivia-api/internal/pkg/pagination"
)

// exportBatchSize: размер пачки при постраничной выгрузке всех вопросов
const exportBatchSize = 500

// QuestionPage: одна страница списка вопросов и общее число совпадений до пагинации
type QuestionPage struct {
	Questions []entity.Question
	Total     int
}

// QuestionService предоставляет методы для работы с вопросами
type QuestionService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
	log          zerolog.Logger
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		log:          log,
	}
}

func paginate(questions []entity.Question, page int) QuestionPage {
	return QuestionPage{
		Questions: pagination.Paginate(questions, page, pagination.PageSize),
		Total:     len(questions),
	}
}

// ListQuestions возвращает страницу всех вопросов
func (s *QuestionService) ListQuestions(ctx context.Context, page int) (QuestionPage, error) {
	questions, err := s.questionRepo.ListAll(ctx)
	if err != nil {
		return QuestionPage{}, err
	}
	return paginate(questions, page), nil
}

// ListCategoryQuestions возвращает страницу вопросов категории вместе с самой категорией.
// Если категории нет, возвращает apperrors.ErrNotFound.
func (s *QuestionService) ListCategoryQuestions(ctx context.Context, categoryID uint, page int) (QuestionPage, *entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return QuestionPage{}, nil, err
	}
	questions, err := s.questionRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return QuestionPage{}, nil, err
	}
	return paginate(questions, page), category, nil
}

// SearchQuestions возвращает страницу вопросов, текст которых содержит term без учёта регистра
func (s *QuestionService) SearchQuestions(ctx context.Context, term string, page int) (QuestionPage, error) {
	questions, err := s.questionRepo.Search(ctx, term)
	if err != nil {
		return QuestionPage{}, err
	}
	return paginate(questions, page), nil
}

// GetQuestion возвращает вопрос по id
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// CountQuestions возвращает общее число вопросов
func (s *QuestionService) CountQuestions(ctx context.Context) (int64, error) {
	return s.questionRepo.Count(ctx)
}

// CreateQuestion проверяет и сохраняет новый вопрос.
// Возвращает сохранённый вопрос и общее число вопросов после вставки.
func (s *QuestionService) CreateQuestion(ctx context.Context, question entity.Question) (*entity.Question, int64, error) {
	question.ID = 0
	if err := question.Validate(); err != nil {
		return nil, 0, err
	}
	if err := s.ensureCategory(ctx, question.CategoryID); err != nil {
		return nil, 0, err
	}

	if err := s.questionRepo.Create(ctx, &question); err != nil {
		return nil, 0, unprocessable("create question", err)
	}

	total, err := s.questionRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	s.log.Info().Uint("question_id", question.ID).Uint("category", question.CategoryID).Msg("question created")
	return &question, total, nil
}

// UpdateQuestion применяет частичное обновление.
// Пустой патч даёт apperrors.ErrBadRequest, отсутствующий вопрос apperrors.ErrNotFound.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, patch entity.QuestionPatch) (*entity.Question, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", apperrors.ErrBadRequest)
	}

	// Только сложность: одно UPDATE без чтения записи
	if patch.Difficulty != nil && patch.Text == nil && patch.Answer == nil && patch.CategoryID == nil {
		if err := entity.ValidateDifficulty(*patch.Difficulty); err != nil {
			return nil, err
		}
		question, err := s.questionRepo.UpdateDifficulty(ctx, id, *patch.Difficulty)
		if err != nil {
			return nil, unprocessable(fmt.Sprintf("update question %d", id), err)
		}
		return question, nil
	}

	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(question); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.ensureCategory(ctx, question.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, unprocessable(fmt.Sprintf("update question %d", id), err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос и возвращает число оставшихся вопросов.
// Отсутствие вопроса проверяется заранее и даёт apperrors.ErrNotFound;
// любая другая ошибка удаления превращается в apperrors.ErrUnprocessable.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) (int64, error) {
	if _, err := s.questionRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}

	if err := s.questionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// удалён параллельным запросом между проверкой и удалением
			return 0, err
		}
		return 0, unprocessable(fmt.Sprintf("delete question %d", id), err)
	}

	total, err := s.questionRepo.Count(ctx)
	if err != nil {
		return 0, err
	}

	s.log.Info().Uint("question_id", id).Msg("question deleted")
	return total, nil
}

// ImportQuestions проверяет все вопросы и сохраняет их одной транзакцией.
// Возвращает число вопросов после импорта.
func (s *QuestionService) ImportQuestions(ctx context.Context, questions []entity.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: no questions to import", apperrors.ErrValidation)
	}

	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[uint]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}

	for i := range questions {
		questions[i].ID = 0
		if err := questions[i].Validate(); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, ok := known[questions[i].CategoryID]; !ok {
			return 0, fmt.Errorf("row %d: %w: unknown category %d", i+1, apperrors.ErrValidation, questions[i].CategoryID)
		}
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		return 0, unprocessable("import questions", err)
	}

	s.log.Info().Int("count", len(questions)).Msg("questions imported")
	return s.questionRepo.Count(ctx)
}

// ExportQuestions выгружает все вопросы пачками по id: каждая следующая пачка
// начинается после последнего выгруженного id, поэтому параллельные изменения
// не приводят к пропуску или дублированию строк.
func (s *QuestionService) ExportQuestions(ctx context.Context) ([]entity.Question, error) {
	var (
		all    []entity.Question
		lastID uint
	)
	for {
		batch, err := s.questionRepo.ListAfter(ctx, lastID, exportBatchSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize {
			return all, nil
		}
		lastID = batch[len(batch)-1].ID
	}
}

func (s *QuestionService) ensureCategory(ctx context.Context, categoryID uint) error {
	exists, err := s.categoryRepo.Exists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: unknown category %d", apperrors.ErrValidation, categoryID)
	}
	return nil
}
