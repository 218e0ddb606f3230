package analysisService

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"dermasnap/internal/api/analysis"
	"dermasnap/pkg/gemini"
	"dermasnap/pkg/yolo"
)

type IAnalysisService interface {
	AnalyzeWithModel(ctx context.Context, imageBase64, analysisType string) (analysis.MLAnalyzeResponse, error)
	DetectLesions(ctx context.Context, imageBase64 string, confidence float64) (analysis.YoloAnalyzeResponse, error)
	ExtractPixels(imageBase64 string, width, height int) (analysis.ExtractPixelsResponse, error)
	ReloadModel(ctx context.Context) error
}

type analysisService struct {
	log      *logrus.Logger
	gemini   gemini.IGemini
	detector yolo.IDetector
}

func New(
	log *logrus.Logger,
	geminiClient gemini.IGemini,
	detector yolo.IDetector,
) IAnalysisService {
	return &analysisService{
		log:      log,
		gemini:   geminiClient,
		detector: detector,
	}
}
