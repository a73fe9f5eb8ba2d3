package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/survey-backend/internal/http/handlers"
	httpMW "github.com/yungbote/survey-backend/internal/http/middleware"
	"github.com/yungbote/survey-backend/internal/http/response"
	"github.com/yungbote/survey-backend/internal/observability"
	"github.com/yungbote/survey-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	ServiceName string
	CORSOrigins []string
	// StaticDir holds index.html, survey.html and results.html. Ignored when it does not exist.
	StaticDir string

	SurveyHandler *httpH.SurveyHandler
	HealthHandler *httpH.HealthHandler
}

var staticPages = map[string]string{
	"/":        "index.html",
	"/survey":  "survey.html",
	"/results": "results.html",
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		if cfg.SurveyHandler != nil {
			api.POST("/survey/student", cfg.SurveyHandler.SubmitStudent)
			api.POST("/survey/professor", cfg.SurveyHandler.SubmitProfessor)
			api.GET("/results", cfg.SurveyHandler.Results)
			api.GET("/stats", cfg.SurveyHandler.Stats)
		}
	}

	mountStatic(r, cfg.StaticDir)
	return r
}

func mountStatic(r *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	notFound := func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
	}
	if dir == "" {
		r.NoRoute(notFound)
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		r.NoRoute(notFound)
		return
	}
	for route, file := range staticPages {
		r.StaticFile(route, filepath.Join(dir, file))
	}
	// Stylesheets, scripts and images referenced by the pages.
	files := http.FileServer(http.Dir(dir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
