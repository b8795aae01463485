package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/metrics"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
	redisrepo "github.com/mycrochip/trivia-api/internal/repository/redis"
	"github.com/mycrochip/trivia-api/internal/service"
	"github.com/mycrochip/trivia-api/internal/service/quizmanager"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// In-memory хранилище: реализует репозитории вопросов и категорий
// ============================================================================

type memoryStore struct {
	mu         sync.Mutex
	categories []entity.Category
	questions  []entity.Question
	nextID     uint
	// deleteErr: ошибка, которую вернёт Delete (имитация сбоя БД)
	deleteErr error
}

// seededStore создаёт 6 категорий и 19 вопросов (Science 3, Art 4, Geography 3, History 4, Entertainment 2, Sports 3)
func seededStore() *memoryStore {
	s := &memoryStore{
		categories: []entity.Category{
			{ID: 1, Type: "Science"},
			{ID: 2, Type: "Art"},
			{ID: 3, Type: "Geography"},
			{ID: 4, Type: "History"},
			{ID: 5, Type: "Entertainment"},
			{ID: 6, Type: "Sports"},
		},
	}
	counts := map[uint]int{1: 3, 2: 4, 3: 3, 4: 4, 5: 2, 6: 3}
	texts := map[uint]string{
		1: "What is the heaviest organ in the human body?",
		2: "Which Dutch graphic artist made mathematically inspired woodcuts?",
		3: "What is the largest lake in Africa?",
		4: "Whose autobiography is entitled 'I Know Why the Caged Bird Sings'?",
		5: "What movie earned Tom Hanks his third straight Oscar nomination?",
		6: "Which is the only team to play in every soccer World Cup tournament?",
	}
	for category := uint(1); category <= 6; category++ {
		for i := 0; i < counts[category]; i++ {
			s.nextID++
			s.questions = append(s.questions, entity.Question{
				ID:         s.nextID,
				Text:       texts[category],
				Answer:     "Answer",
				CategoryID: category,
				Difficulty: 1 + i%5,
			})
		}
	}
	return s
}

type memQuestionRepo struct{ s *memoryStore }

type memCategoryRepo struct{ s *memoryStore }

func (r memQuestionRepo) filter(keep func(entity.Question) bool) []entity.Question {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []entity.Question{}
	for _, q := range r.s.questions {
		if keep(q) {
			result = append(result, q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r memQuestionRepo) ListAll(ctx context.Context) ([]entity.Question, error) {
	return r.filter(func(entity.Question) bool { return true }), nil
}

func (r memQuestionRepo) ListByCategory(ctx context.Context, categoryID uint) ([]entity.Question, error) {
	return r.filter(func(q entity.Question) bool { return q.CategoryID == categoryID }), nil
}

func (r memQuestionRepo) Search(ctx context.Context, term string) ([]entity.Question, error) {
	term = strings.ToLower(term)
	return r.filter(func(q entity.Question) bool { return strings.Contains(strings.ToLower(q.Text), term) }), nil
}

func (r memQuestionRepo) ListAfter(ctx context.Context, afterID uint, limit int) ([]entity.Question, error) {
	after := r.filter(func(q entity.Question) bool { return q.ID > afterID })
	if len(after) > limit {
		after = after[:limit]
	}
	return after, nil
}

func (r memQuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	found := r.filter(func(q entity.Question) bool { return q.ID == id })
	if len(found) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &found[0], nil
}

func (r memQuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	question.ID = r.s.nextID
	r.s.questions = append(r.s.questions, *question)
	return nil
}

func (r memQuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	for i := range questions {
		if err := r.Create(ctx, &questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r memQuestionRepo) UpdateDifficulty(ctx context.Context, id uint, difficulty int) (*entity.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.questions {
		if r.s.questions[i].ID == id {
			r.s.questions[i].Difficulty = difficulty
			q := r.s.questions[i]
			return &q, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r memQuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.questions {
		if r.s.questions[i].ID == question.ID {
			r.s.questions[i] = *question
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r memQuestionRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.deleteErr != nil {
		return r.s.deleteErr
	}
	for i := range r.s.questions {
		if r.s.questions[i].ID == id {
			r.s.questions = append(r.s.questions[:i], r.s.questions[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r memQuestionRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.questions)), nil
}

func (r memCategoryRepo) ListAll(ctx context.Context) ([]entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.Category(nil), r.s.categories...), nil
}

func (r memCategoryRepo) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r memCategoryRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

// testApp: роутер со всеми зависимостями поверх in-memory хранилища
type testApp struct {
	router   *gin.Engine
	store    *memoryStore
	registry *prometheus.Registry
}

func newTestApp(t *testing.T, store *memoryStore) *testApp {
	t.Helper()
	if store == nil {
		store = seededStore()
	}

	questionRepo := memQuestionRepo{s: store}
	categoryRepo := memCategoryRepo{s: store}
	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)
	log := zerolog.Nop()

	categoryService := service.NewCategoryService(categoryRepo, redisrepo.NoopCache{}, 0, log)
	questionService := service.NewQuestionService(questionRepo, categoryRepo, log)
	quizService := service.NewQuizService(questionRepo, categoryRepo, quizmanager.NewSelector(), appMetrics, log)

	router := NewRouter(RouterConfig{
		Logger:   log,
		Metrics:  appMetrics,
		Category: NewCategoryHandler(categoryService, questionService),
		Question: NewQuestionHandler(questionService, categoryService, appMetrics),
		Quiz:     NewQuizHandler(quizService),
		Health:   NewHealthHandler(stubPinger{}),
	})
	return &testApp{router: router, store: store, registry: registry}
}

// do выполняет запрос к роутеру; body сериализуется в JSON, строка отправляется как есть
func (a *testApp) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// assertErrorEnvelope проверяет единый формат ошибки
func assertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	resp := parseJSONResponse(t, w)
	require.Equal(t, false, resp["success"])
	require.Equal(t, float64(status), resp["error"])
	require.Equal(t, message, resp["message"])
}

// counterValue возвращает значение счётчика name с меткой label=value (0, если серии нет).
// При пустом label берётся счётчик без меток.
func (a *testApp) counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := a.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if label == "" {
				return metric.GetCounter().GetValue()
			}
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
