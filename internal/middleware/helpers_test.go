package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/jaekwang-park/todo-list/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(middleware.NewContextHandler(slog.NewTextHandler(&buf, nil))), &buf
}

// newEngine mounts h at GET /x behind the production middleware order.
func newEngine(logger *slog.Logger, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(logger), middleware.Recovery(logger))
	r.GET("/x", h)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
