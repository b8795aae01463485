package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycrochip/trivia-api/internal/handler/dto"
	"github.com/mycrochip/trivia-api/internal/handler/helper"
	"github.com/mycrochip/trivia-api/internal/service"
)

// QuizHandler обрабатывает ходы викторины
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// PlayQuiz выдает следующий незаданный вопрос выбранной категории.
// Когда вопросы закончились, question равен null, а previous_questions не меняется.
// POST /quizzes
func (h *QuizHandler) PlayQuiz(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}
	var req dto.QuizRequest
	if err := helper.DecodeObject(body, &req); err != nil {
		handleError(c, err)
		return
	}

	scope, err := helper.ParseQuizCategory(req.QuizCategory)
	if err != nil {
		handleError(c, err)
		return
	}
	previous, err := helper.ConvertPreviousIDs(req.PreviousQuestions)
	if err != nil {
		handleError(c, err)
		return
	}

	round, err := h.quizService.NextQuestion(c.Request.Context(), scope, previous)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(round.Question, round.PreviousIDs))
}
