package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/handler/dto"
	"github.com/mycrochip/trivia-api/internal/handler/helper"
	"github.com/mycrochip/trivia-api/internal/pkg/pagination"
	"github.com/mycrochip/trivia-api/internal/service"
)

// ImportRecorder учитывает импортированные вопросы (метрики)
type ImportRecorder interface {
	QuestionsImported(n int)
}

// QuestionHandler обрабатывает запросы, связанные с вопросами
type QuestionHandler struct {
	questionService *service.QuestionService
	categoryService *service.CategoryService
	recorder        ImportRecorder
}

// NewQuestionHandler создает новый обработчик вопросов. recorder может быть nil.
func NewQuestionHandler(
	questionService *service.QuestionService,
	categoryService *service.CategoryService,
	recorder ImportRecorder,
) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		categoryService: categoryService,
		recorder:        recorder,
	}
}

// GetQuestions возвращает страницу всех вопросов вместе со словарем категорий
// GET /questions?page=N
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.ParsePage(c.Query("page"))

	result, err := h.questionService.ListQuestions(ctx, page)
	if err != nil {
		handleError(c, err)
		return
	}
	if len(result.Questions) == 0 {
		respondError(c, http.StatusNotFound)
		return
	}

	categories, err := h.categoryService.ListCategories(ctx)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuestionListResponse{
		Success:         true,
		Questions:       dto.NewQuestionListResponse(result.Questions),
		TotalQuestions:  result.Total,
		Categories:      entity.CategoryMap(categories),
		CurrentCategory: "All",
	})
}

// GetQuestion возвращает вопрос по id
// GET /questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"question": dto.NewQuestionResponse(question),
	})
}

// PostQuestions ищет вопросы по searchTerm, а без него создает новый вопрос
// POST /questions
func (h *QuestionHandler) PostQuestions(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}
	var req dto.QuestionsRequest
	if err := helper.DecodeObject(body, &req); err != nil {
		handleError(c, err)
		return
	}

	if req.IsSearch() {
		h.searchQuestions(c, *req.SearchTerm)
		return
	}
	h.createQuestion(c, req)
}

func (h *QuestionHandler) searchQuestions(c *gin.Context, term string) {
	page := pagination.ParsePage(c.Query("page"))

	result, err := h.questionService.SearchQuestions(c.Request.Context(), term, page)
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
		CurrentCategory: "None",
	})
}

func (h *QuestionHandler) createQuestion(c *gin.Context, req dto.QuestionsRequest) {
	question, total, err := h.questionService.CreateQuestion(c.Request.Context(), req.ToEntity())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"created":         question.ID,
		"questions":       []*dto.QuestionResponse{dto.NewQuestionResponse(question)},
		"totalQuestions":  total,
		"currentCategory": "All",
	})
}

// PatchQuestion обновляет сложность вопроса и, по желанию, остальные поля
// PATCH /questions/:id
func (h *QuestionHandler) PatchQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}
	var req dto.UpdateQuestionRequest
	if err := helper.DecodeObject(body, &req); err != nil {
		handleError(c, err)
		return
	}
	if req.Difficulty == nil {
		respondError(c, http.StatusBadRequest)
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, req.ToPatch())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       question.ID,
		"question": dto.NewQuestionResponse(question),
	})
}

// DeleteQuestion удаляет вопрос
// DELETE /questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	total, err := h.questionService.DeleteQuestion(c.Request.Context(), questionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"deleted":        questionID,
		"totalQuestions": total,
	})
}
