package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/domain/repository"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

const categoriesCacheKey = "categories:all"

// CategoryService предоставляет чтение категорий с кешированием списка
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cacheRepo    repository.CacheRepository
	cacheTTL     time.Duration
	log          zerolog.Logger
}

// NewCategoryService создает новый сервис категорий.
// cacheTTL <= 0 отключает кеширование.
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// ListCategories возвращает все категории, упорядоченные по id.
// Ошибки кеша не прерывают запрос: данные берутся из БД.
func (s *CategoryService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if s.cacheTTL > 0 {
		var cached []entity.Category
		err := s.cacheRepo.GetJSON(ctx, categoriesCacheKey, &cached)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, apperrors.ErrNotFound):
			s.log.Warn().Err(err).Msg("category cache read failed, falling back to database")
		}
	}

	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	// Пустой список не кешируем, чтобы не закрепить 404 на весь TTL
	if s.cacheTTL > 0 && len(categories) > 0 {
		if err := s.cacheRepo.SetJSON(ctx, categoriesCacheKey, categories, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return categories, nil
}

// GetCategory возвращает категорию по id или apperrors.ErrNotFound
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}
