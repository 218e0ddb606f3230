package analysisService

import (
	"golang.org/x/net/context"

	"dermasnap/internal/api/analysis"
	"dermasnap/internal/entity"
	contextPkg "dermasnap/pkg/context"
	"dermasnap/pkg/imaging"
	"dermasnap/pkg/log"
	"dermasnap/pkg/narrative"
	"dermasnap/pkg/yolo"
)

// AnalyzeWithModel runs the narrative backend on the image and parses the
// generated text into structured metrics for the requested category. A
// backend that cannot load surfaces as ErrModelUnavailable so callers can
// degrade to their rule-based analyzer; per-request load retries never
// happen (the load failure is sticky until an explicit reload).
func (s *analysisService) AnalyzeWithModel(ctx context.Context, imageBase64, analysisType string) (analysis.MLAnalyzeResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	text, err := s.gemini.AnalyzeSkin(ctx, imageBase64, analysisType)
	if err != nil {
		if !s.gemini.IsReady() {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Narrative model unavailable")
			return analysis.MLAnalyzeResponse{}, analysis.ErrModelUnavailable
		}

		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Narrative model inference failed")
		return analysis.MLAnalyzeResponse{}, analysis.ErrInferenceFailed
	}

	return analysis.MLAnalyzeResponse{
		Success:    true,
		Analysis:   text,
		Parsed:     narrative.Parse(text, analysisType),
		Model:      s.gemini.ModelName(),
		Confidence: "high",
		Method:     "ml",
	}, nil
}

// DetectLesions decodes the payload and runs the object detector. The
// confidence threshold is enforced inside the backend; boxes below it never
// reach here.
func (s *analysisService) DetectLesions(ctx context.Context, imageBase64 string, confidence float64) (analysis.YoloAnalyzeResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	raster, err := imaging.Decode(imageBase64)
	if err != nil {
		return analysis.YoloAnalyzeResponse{}, err
	}

	if confidence <= 0 {
		confidence = yolo.DefaultConfidence
	}

	boxes, err := s.detector.Detect(raster, confidence)
	if err != nil {
		if !s.detector.IsReady() {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Lesion detector unavailable")
			return analysis.YoloAnalyzeResponse{}, analysis.ErrDetectorUnavailable
		}

		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Lesion detection failed")
		return analysis.YoloAnalyzeResponse{}, analysis.ErrInferenceFailed
	}

	detections := make([]entity.DetectionBox, 0, len(boxes))
	for _, b := range boxes {
		detections = append(detections, entity.DetectionBox{
			X:          b.X,
			Y:          b.Y,
			Width:      b.Width,
			Height:     b.Height,
			Confidence: b.Confidence,
			ClassID:    b.ClassID,
			Class:      b.Class,
			Model:      b.Model,
		})
	}

	return analysis.YoloAnalyzeResponse{
		Boxes: detections,
		Model: s.detector.ModelName(),
		Count: len(detections),
	}, nil
}

// ExtractPixels decodes the payload, resizes on demand, and exports the raw
// RGBA sequence for external rule-based analyzers.
func (s *analysisService) ExtractPixels(imageBase64 string, width, height int) (analysis.ExtractPixelsResponse, error) {
	raster, err := imaging.Decode(imageBase64)
	if err != nil {
		return analysis.ExtractPixelsResponse{}, err
	}

	raster = imaging.Resize(raster, width, height)

	return analysis.ExtractPixelsResponse{
		Pixels: imaging.FlatRGBA(raster),
		Width:  width,
		Height: height,
		Format: "RGBA",
	}, nil
}

// ReloadModel is the supervisor hook to retry a failed narrative-model load
// once resources change.
func (s *analysisService) ReloadModel(ctx context.Context) error {
	if err := s.gemini.Reload(ctx); err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Narrative model reload failed")
		return analysis.ErrModelUnavailable
	}

	return nil
}
