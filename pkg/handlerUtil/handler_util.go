package handlerUtil

import (
	"dermasnap/internal/api/analysis"
	"dermasnap/pkg/imaging"
	"dermasnap/pkg/log"
	"dermasnap/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	// Analysis domain errors. These carry a fallback flag so clients know
	// they can run their local rule-based analyzer instead.
	if errors.Is(err, analysis.ErrModelUnavailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("ML model not available")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":    "ML model not available",
			"code":     "MODEL_UNAVAILABLE",
			"fallback": true,
		})
	}

	if errors.Is(err, analysis.ErrDetectorUnavailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Lesion detector not available")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":    "Lesion detector not available",
			"code":     "DETECTOR_UNAVAILABLE",
			"fallback": true,
		})
	}

	if errors.Is(err, analysis.ErrInferenceFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Model inference failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    "Model inference failed",
			"code":     "INFERENCE_FAILED",
			"fallback": true,
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	// Image payload errors
	if errors.Is(err, imaging.ErrInvalidEncoding) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid image encoding")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid base64 image data",
			"code":  "INVALID_IMAGE_DATA",
		})
	}

	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Unsupported image format")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported image format. Only JPEG, PNG, and WebP are allowed.",
			"code":  "UNSUPPORTED_IMAGE_FORMAT",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
