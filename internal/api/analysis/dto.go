package analysis

import (
	"dermasnap/internal/entity"
	"dermasnap/pkg/narrative"
)

type MLAnalyzeRequest struct {
	ImageBase64  string `json:"imageBase64" validate:"required"`
	AnalysisType string `json:"analysisType" validate:"required,oneof=acne pigmentation wrinkles full"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// MLAnalyzeResponse is the uniform narrative-analysis envelope. Confidence is
// a tier label, not a probability; Method lets clients tell model output from
// the rule-based fallback they may run themselves.
type MLAnalyzeResponse struct {
	Success    bool                         `json:"success"`
	Analysis   string                       `json:"analysis"`
	Parsed     map[string]narrative.Metrics `json:"parsed"`
	Model      string                       `json:"model"`
	Confidence string                       `json:"confidence"`
	Method     string                       `json:"method"`
}

type YoloAnalyzeRequest struct {
	ImageBase64 string  `json:"imageBase64" validate:"required"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Confidence  float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
}

type YoloAnalyzeResponse struct {
	Boxes []entity.DetectionBox `json:"boxes"`
	Model string                `json:"model"`
	Count int                   `json:"count"`
}

type ExtractPixelsRequest struct {
	ImageBase64 string `json:"imageBase64" validate:"required"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type ExtractPixelsResponse struct {
	Pixels []int  `json:"pixels"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}
