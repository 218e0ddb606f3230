package scan

import "dermasnap/internal/entity"

type CreateScanRequest struct {
	ImageURI     string                 `json:"imageUri"`
	ImageBase64  string                 `json:"imageBase64" validate:"required"`
	SkinTone     entity.SkinTone        `json:"skinTone"`
	Timestamp    string                 `json:"timestamp" validate:"required"`
	AnalysisType string                 `json:"analysisType" validate:"required"`
	Acne         *entity.AnalysisResult `json:"acne,omitempty"`
	Pigmentation *entity.AnalysisResult `json:"pigmentation,omitempty"`
	Wrinkles     *entity.AnalysisResult `json:"wrinkles,omitempty"`
}

type CreateScanResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ScanResponse is the persisted form: the image is a reference, never the
// raw payload.
type ScanResponse struct {
	ID           string                 `json:"id"`
	ImageURI     string                 `json:"imageUri"`
	SkinTone     entity.SkinTone        `json:"skinTone"`
	Timestamp    string                 `json:"timestamp"`
	AnalysisType string                 `json:"analysisType"`
	Acne         *entity.AnalysisResult `json:"acne,omitempty"`
	Pigmentation *entity.AnalysisResult `json:"pigmentation,omitempty"`
	Wrinkles     *entity.AnalysisResult `json:"wrinkles,omitempty"`
}

type StatisticsResponse struct {
	TotalScans int            `json:"totalScans"`
	ByType     map[string]int `json:"byType"`
}
