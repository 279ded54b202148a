package httpserver

import (
	"context"
	"net/http"
	"time"

	"researchhub/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a readiness dependency (database, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handlers struct {
	Auth      *handler.AuthHandler
	Projects  *handler.ProjectHandler
	Papers    *handler.PaperHandler
	Dashboard *handler.DashboardHandler
	Reminders *handler.ReminderHandler
	Timer     *handler.TimerHandler
	Tools     *handler.ToolsHandler
}

type Options struct {
	Authenticator handler.Authenticator
	CORSOrigins   []string
	Ready         map[string]Pinger
	Logger        *zap.Logger
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, opts Options) *Router {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		handler.TraceMiddleware(),
		handler.RequestLogger(opts.Logger),
		handler.Metrics(),
		handler.CORS(opts.CORSOrigins),
	)
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyHandler(opts.Ready))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/auth/signup", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(handler.AuthMiddleware(opts.Authenticator, opts.Logger))
	{
		auth.POST("/auth/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
		auth.GET("/dashboard", h.Dashboard.Get)

		auth.POST("/projects/ideas", h.Projects.GenerateIdea)
		auth.POST("/projects/ideas/elaborate", h.Projects.Elaborate)
		auth.POST("/projects", h.Projects.Create)
		auth.GET("/projects", h.Projects.List)
		auth.GET("/projects/:id", h.Projects.Get)
		auth.PATCH("/projects/:id", h.Projects.Update)
		auth.POST("/projects/:id/complete", h.Projects.Complete)
		auth.DELETE("/projects/:id", h.Projects.Delete)
		auth.POST("/projects/:id/roadmap/generate", h.Projects.GenerateRoadmap)
		auth.GET("/projects/:id/roadmap", h.Projects.Roadmap)
		auth.POST("/projects/:id/roadmap/:stepID/toggle", h.Projects.ToggleStep)

		auth.POST("/papers", h.Papers.Create)
		auth.GET("/papers", h.Papers.List)
		auth.GET("/papers/venues", h.Papers.Venues)
		auth.GET("/papers/:id", h.Papers.Get)
		auth.PATCH("/papers/:id", h.Papers.Update)
		auth.DELETE("/papers/:id", h.Papers.Delete)
		auth.POST("/papers/:id/sections/generate", h.Papers.GenerateSection)
		auth.PUT("/papers/:id/sections", h.Papers.SaveSection)
		auth.POST("/papers/:id/format", h.Papers.Format)

		auth.POST("/reminders", h.Reminders.Create)
		auth.GET("/reminders", h.Reminders.List)
		auth.DELETE("/reminders/:id", h.Reminders.Delete)

		auth.POST("/timer/start", h.Timer.Start)
		auth.POST("/timer/stop", h.Timer.Stop)
		auth.GET("/timer", h.Timer.Status)

		auth.GET("/scholar", h.Tools.Scholar)
		auth.POST("/email", h.Tools.SendEmail)
		auth.POST("/convert", h.Tools.Convert)
		auth.POST("/plagiarism", h.Tools.Plagiarism)
		auth.POST("/uploads", h.Tools.Upload)
	}

	return &Router{Engine: r}
}

func readyHandler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
