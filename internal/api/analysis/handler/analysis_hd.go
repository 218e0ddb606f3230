package analysisHandler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"dermasnap/internal/api/analysis"
	contextPkg "dermasnap/pkg/context"
	"dermasnap/pkg/handlerUtil"
	"dermasnap/pkg/log"
)

func (h *AnalysisHandler) AnalyzeML(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing ML analysis request")

	var req analysis.MLAnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.analysisService.AnalyzeWithModel(c, req.ImageBase64, req.AnalysisType)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_ml")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *AnalysisHandler) AnalyzeYolo(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing lesion detection request")

	var req analysis.YoloAnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.analysisService.DetectLesions(c, req.ImageBase64, req.Confidence)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_yolo")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *AnalysisHandler) ReloadModel(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Info("Reloading ML model")

	if err := h.analysisService.ReloadModel(c); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "reload_model")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Model reloaded successfully",
		})
	}
}

func (h *AnalysisHandler) ExtractPixels(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	var req analysis.ExtractPixelsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	width := req.Width
	if width <= 0 {
		width = 800
	}

	height := req.Height
	if height <= 0 {
		height = 600
	}

	result, err := h.analysisService.ExtractPixels(req.ImageBase64, width, height)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "extract_pixels")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}
