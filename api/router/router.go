package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"hinglish-snaps/api/handlers"
	"hinglish-snaps/api/middleware"
	"hinglish-snaps/api/services"
	"hinglish-snaps/api/validation"
	_ "hinglish-snaps/docs"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

type Deps struct {
	News      *services.NewsService
	Auth      *services.AuthService
	Validator *validation.Validator
	Ping      Pinger
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())

	r.GET("/health", healthHandler(d.Ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		news := api.Group("/news")
		news.GET("", handlers.ListNewsHandler(d.News))
		news.POST("/convert", handlers.ConvertNewsHandler(d.News, d.Validator))

		authGroup := api.Group("/auth")
		authGroup.GET("", handlers.HomeHandler())
		authGroup.POST("/register", handlers.RegisterHandler(d.Auth, d.Validator))
		authGroup.POST("/login", handlers.LoginHandler(d.Auth, d.Validator))
		authGroup.GET("/user", middleware.RequireUser(d.Auth), handlers.GetUserHandler())
	}

	return r
}

func healthHandler(ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
