package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/handler/dto"
	"github.com/mycrochip/trivia-api/internal/pkg/pagination"
	"github.com/mycrochip/trivia-api/internal/service"
)

// CategoryHandler обрабатывает запросы, связанные с категориями
type CategoryHandler struct {
	categoryService *service.CategoryService
	questionService *service.QuestionService
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(categoryService *service.CategoryService, questionService *service.QuestionService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		questionService: questionService,
	}
}

// GetCategories возвращает все категории словарем {id: type}
// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if len(categories) == 0 {
		respondError(c, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"categories":       entity.CategoryMap(categories),
		"total_categories": len(categories),
	})
}

// GetCategory возвращает одну категорию
// GET /categories/:category_id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	category, err := h.categoryService.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": dto.CategoryResponse{ID: category.ID, Type: category.Type},
	})
}

// GetCategoryQuestions возвращает страницу вопросов категории
// GET /categories/:category_id/questions?page=N
func (h *CategoryHandler) GetCategoryQuestions(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)
	page := pagination.ParsePage(c.Query("page"))

	result, category, err := h.questionService.ListCategoryQuestions(c.Request.Context(), categoryID, page)
	if err != nil {
		handleError(c, err)
		return
	}
	if len(result.Questions) == 0 {
		respondError(c, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, dto.QuestionListResponse{
		Success:         true,
		Questions:       dto.NewQuestionListResponse(result.Questions),
		TotalQuestions:  result.Total,
		CurrentCategory: category.Type,
	})
}
