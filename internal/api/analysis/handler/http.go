package analysisHandler

import (
	analysisService "dermasnap/internal/api/analysis/service"
	"dermasnap/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AnalysisHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	analysisService analysisService.IAnalysisService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as analysisService.IAnalysisService,
) *AnalysisHandler {
	return &AnalysisHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		analysisService: as,
	}
}

func (h *AnalysisHandler) Start(srv fiber.Router) {
	srv.Post("/analyze/yolo", h.middleware.NewRateLimiter, h.AnalyzeYolo)
	srv.Post("/analyze/ml", h.middleware.NewRateLimiter, h.AnalyzeML)
	srv.Post("/analyze/ml/reload", h.ReloadModel)
	srv.Post("/extract-pixels", h.ExtractPixels)
}
