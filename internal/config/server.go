package config

import (
	"dermasnap/database/postgres"
	analysisHandler "dermasnap/internal/api/analysis/handler"
	analysisService "dermasnap/internal/api/analysis/service"
	scanHandler "dermasnap/internal/api/scan/handler"
	scanRepository "dermasnap/internal/api/scan/repository"
	scanService "dermasnap/internal/api/scan/service"
	"dermasnap/internal/middleware"
	"dermasnap/pkg/artifact"
	"dermasnap/pkg/gemini"
	"dermasnap/pkg/redis"
	"dermasnap/pkg/utils"
	"dermasnap/pkg/yolo"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	redisServer   redis.IRedis
	artifactStore artifact.Store
	geminiClient  gemini.IGemini
	yoloDetector  yolo.IDetector
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithArtifactStore() ServerOption {
	return func(s *Server) error {
		store, err := artifact.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize artifact store: %v", err)
			}
			return fmt.Errorf("failed to create artifact store: %w", err)
		}
		s.artifactStore = store
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		s.geminiClient = gemini.New()
		return nil
	}
}

func WithYoloDetector() ServerOption {
	return func(s *Server) error {
		s.yoloDetector = yolo.New()
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Scan Domain
	scanRepo := scanRepository.New(s.db, s.log)
	scanServices := scanService.New(s.log, scanRepo, s.artifactStore, s.redisServer, s.utils)
	scanHandlers := scanHandler.New(s.log, s.validator, s.middleware, scanServices)

	// Analysis Domain
	analysisServices := analysisService.New(s.log, s.geminiClient, s.yoloDetector)
	analysisHandlers := analysisHandler.New(s.log, s.validator, s.middleware, analysisServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, scanHandlers, analysisHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Static("/uploads", artifact.LocalRoot())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	healthy := func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	}

	s.engine.Get("/", healthy)
	s.engine.Get("/health", healthy)
}
