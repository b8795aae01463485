package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics содержит метрики HTTP-сервера и викторин
type Metrics struct {
	registry prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quizRounds      *prometheus.CounterVec
	importedTotal   prometheus.Counter
}

// New регистрирует метрики в reg. В тестах передаётся prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Количество обработанных HTTP-запросов.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP-запросов.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quizRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trivia_quiz_rounds_total",
			Help: "Ходы викторины по исходу: выдан вопрос или вопросы закончились.",
		}, []string{"outcome"}),
		importedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trivia_questions_imported_total",
			Help: "Количество вопросов, загруженных через импорт.",
		}),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.quizRounds, m.importedTotal)
	return m
}

// ObserveRequest записывает один обработанный запрос
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// QuizRound учитывает ход викторины; exhausted означает, что вопросы закончились
func (m *Metrics) QuizRound(exhausted bool) {
	if m == nil {
		return
	}
	outcome := "question"
	if exhausted {
		outcome = "exhausted"
	}
	m.quizRounds.WithLabelValues(outcome).Inc()
}

// QuestionsImported учитывает загруженные вопросы
func (m *Metrics) QuestionsImported(n int) {
	if m == nil {
		return
	}
	m.importedTotal.Add(float64(n))
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
