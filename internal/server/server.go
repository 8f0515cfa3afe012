package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/socialchat/backend/config"
	"github.com/socialchat/backend/internal/api"
	"github.com/socialchat/backend/internal/middleware"
	"github.com/socialchat/backend/internal/service"
)

// Server wires the services into the HTTP surface.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New creates a server with all routes registered.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) *Server {
	tokens := service.NewTokenService(cfg.JWTSecret)
	auth := service.NewAuthService(db, tokens)
	presence := service.NewPresenceService(redisClient)
	profiles := service.NewProfileService(db, presence)
	notifier := service.NewNotifier(cfg.SocketServerURL)
	messages := service.NewMessageService(db, notifier)
	uploads := service.NewUploadService(db, s3Config)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", healthHandler(db, redisClient))

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(auth).RegisterRoutes(v1)

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired(auth, presence))
	api.NewProfileHandler(profiles).RegisterRoutes(authed)
	api.NewMessageHandler(messages).RegisterRoutes(authed)
	api.NewUploadHandler(uploads).RegisterRoutes(authed)

	return &Server{
		router: router,
		db:     db,
		redis:  redisClient,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func healthHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		status := gin.H{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				status["redis"] = "unavailable"
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
