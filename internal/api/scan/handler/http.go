package scanHandler

import (
	scanService "dermasnap/internal/api/scan/service"
	"dermasnap/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ScanHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	scanService scanService.IScanService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ss scanService.IScanService,
) *ScanHandler {
	return &ScanHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		scanService: ss,
	}
}

func (h *ScanHandler) Start(srv fiber.Router) {
	scans := srv.Group("/scans")

	scans.Post("/", h.CreateScan)
	scans.Get("", h.GetAllScans)
	scans.Get("/stats/summary", h.GetScanStatistics)
	scans.Get("/:id", h.GetScanByID)
	scans.Delete("/:id", h.DeleteScan)
}
