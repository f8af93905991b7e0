package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jaekwang-park/todo-list/internal/http/handler"
	"github.com/jaekwang-park/todo-list/internal/middleware"
	"github.com/jaekwang-park/todo-list/internal/service"
)

// NewRouter registers the API under /api plus the root and health probes.
// Every route, unknown ones included, runs behind request id, access log,
// panic recovery and CORS in that order.
func NewRouter(todoSvc *service.TodoService, logger *slog.Logger, allowOrigins []string) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
		cors.New(corsConfig(allowOrigins)),
	)

	r.GET("/", handler.Root)
	r.GET("/health", handler.Health)

	todo := handler.NewTodoHandler(todoSvc)
	api := r.Group("/api")
	api.GET("/items", todo.List)
	api.GET("/items/filter", todo.FilteredList)
	api.POST("/item/new", todo.Create)
	api.PUT("/item/:id", todo.Update)
	api.DELETE("/item/:id", todo.Delete)
	api.PUT("/bulk", todo.BulkUpdate)
	api.DELETE("/bulk/delete", todo.BulkDelete)

	return r
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	return cfg
}
