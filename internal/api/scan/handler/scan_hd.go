package scanHandler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"dermasnap/internal/api/scan"
	scanService "dermasnap/internal/api/scan/service"
	"dermasnap/internal/entity"
	contextPkg "dermasnap/pkg/context"
	"dermasnap/pkg/handlerUtil"
	"dermasnap/pkg/log"
)

func (h *ScanHandler) CreateScan(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create scan request")

	var req scan.CreateScanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	id, err := h.scanService.CreateScan(c, scanService.CreateScanData{
		ImageBase64:  req.ImageBase64,
		SkinTone:     req.SkinTone,
		Timestamp:    req.Timestamp,
		AnalysisType: req.AnalysisType,
		Acne:         req.Acne,
		Pigmentation: req.Pigmentation,
		Wrinkles:     req.Wrinkles,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_scan")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, scan.CreateScanResponse{
			ID:      id,
			Message: "Scan saved successfully",
		})
	}
}

func (h *ScanHandler) GetAllScans(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	limit, err := strconv.Atoi(ctx.Query("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	skip, err := strconv.Atoi(ctx.Query("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	scans, err := h.scanService.GetAllScans(c, limit, skip)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_all_scans")
	}

	responses := make([]scan.ScanResponse, 0, len(scans))
	for _, s := range scans {
		responses = append(responses, makeScanResponse(s))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, responses)
	}
}

func (h *ScanHandler) GetScanByID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")

	record, err := h.scanService.GetScanByID(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_scan")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, makeScanResponse(record))
	}
}

func (h *ScanHandler) DeleteScan(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete scan request")

	id := ctx.Params("id")

	if err := h.scanService.DeleteScan(c, id); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_scan")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Scan deleted successfully",
		})
	}
}

func (h *ScanHandler) GetScanStatistics(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	stats, err := h.scanService.GetScanStatistics(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "scan_statistics")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, scan.StatisticsResponse{
			TotalScans: stats.TotalScans,
			ByType:     stats.ByType,
		})
	}
}

func makeScanResponse(s entity.Scan) scan.ScanResponse {
	return scan.ScanResponse{
		ID:           s.ID,
		ImageURI:     s.ImageURI,
		SkinTone:     s.SkinTone,
		Timestamp:    s.Timestamp,
		AnalysisType: s.AnalysisType,
		Acne:         s.Acne,
		Pigmentation: s.Pigmentation,
		Wrinkles:     s.Wrinkles,
	}
}
