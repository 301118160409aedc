package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ops-accountability/internal/http/handlers"
	httpMW "github.com/yungbote/ops-accountability/internal/http/middleware"
	"github.com/yungbote/ops-accountability/internal/observability"
	"github.com/yungbote/ops-accountability/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	HealthHandler      *httpH.HealthHandler
	EnforcementHandler *httpH.EnforcementHandler
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
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if h := cfg.EnforcementHandler; h != nil {
		// Reads
		api.GET("/orgs/:org/venues/:venue/preshift", h.GetPreshiftSummary)
		api.GET("/orgs/:org/venues/:venue/queue", h.GetQueue)
		api.GET("/orgs/:org/scores", h.ListScores)
		api.GET("/violations/:violation", h.GetViolation)

		// Manual lifecycle
		api.POST("/violations/:violation/:transition", h.Transition)

		// Batch runs
		api.POST("/orgs/:org/runs/ladder", h.RunLadder)
		api.POST("/orgs/:org/runs/scores", h.RunScores)
		api.POST("/runs/carry-forward", h.RunCarryForward)
	}

	return r
}
