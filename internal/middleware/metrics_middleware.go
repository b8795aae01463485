package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver принимает измерения HTTP-запросов (*metrics.Metrics)
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics учитывает каждый запрос по шаблону маршрута.
// Несовпавшие пути сводятся к одной метке, чтобы не раздувать кардинальность.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
