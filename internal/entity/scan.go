package entity

import "time"

// Storage categories for persisted scans. "full" and "pigmentation" are
// client-facing only: pigmentation is renamed to pimple at write time and
// full scans are rejected.
const (
	StorageTypeAcne     = "acne"
	StorageTypeWrinkles = "wrinkles"
	StorageTypePimple   = "pimple"
)

// StorageTypes is the fixed set of on-disk category buckets.
var StorageTypes = []string{StorageTypeAcne, StorageTypeWrinkles, StorageTypePimple}

type SkinTone struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// SkinMetrics is a sparse record of quantitative skin measurements. Fields
// are independently optional; nil means "not determined", never zero.
type SkinMetrics struct {
	TotalCount          *int     `json:"totalCount,omitempty"`
	Comedones           *int     `json:"comedones,omitempty"`
	Pustules            *int     `json:"pustules,omitempty"`
	Papules             *int     `json:"papules,omitempty"`
	Nodules             *int     `json:"nodules,omitempty"`
	InflammatoryPercent *int     `json:"inflammatoryPercent,omitempty"`
	Density             *string  `json:"density,omitempty"`
	RednessPercent      *int     `json:"rednessPercent,omitempty"`
	PoreCount           *int     `json:"poreCount,omitempty"`
	AvgPoreSize         *int     `json:"avgPoreSize,omitempty"`
	PoreDensity         *string  `json:"poreDensity,omitempty"`
	PigmentedPercent    *float64 `json:"pigmentedPercent,omitempty"`
	AvgIntensityDiff    *int     `json:"avgIntensityDiff,omitempty"`
	SHI                 *string  `json:"shi,omitempty"`
	SpotCount           *int     `json:"spotCount,omitempty"`
	SpotDensity         *string  `json:"spotDensity,omitempty"`
	Count               *int     `json:"count,omitempty"`
	CountPerCm          *string  `json:"countPerCm,omitempty"`
	AvgLength           *int     `json:"avgLength,omitempty"`
	AvgDepth            *int     `json:"avgDepth,omitempty"`
	DensityPercent      *string  `json:"densityPercent,omitempty"`
}

// AnalysisResult is one category's metrics plus optional raw geometric
// detail. Owned exclusively by the scan that contains it.
type AnalysisResult struct {
	Metrics  SkinMetrics              `json:"metrics"`
	Severity string                   `json:"severity"`
	Lesions  []map[string]interface{} `json:"lesions,omitempty"`
	Regions  []map[string]interface{} `json:"regions,omitempty"`
	Lines    []map[string]interface{} `json:"lines,omitempty"`
}

// Scan is a persisted skin analysis. ImageURI/ImagePath reference the stored
// artifact; raw image bytes are never retained after creation. Immutable
// except for deletion.
type Scan struct {
	ID           string          `json:"id"`
	ImageURI     string          `json:"imageUri"`
	ImagePath    string          `json:"imagePath,omitempty"`
	SkinTone     SkinTone        `json:"skinTone"`
	Timestamp    string          `json:"timestamp"`
	AnalysisType string          `json:"analysisType"`
	Acne         *AnalysisResult `json:"acne,omitempty"`
	Pigmentation *AnalysisResult `json:"pigmentation,omitempty"`
	Wrinkles     *AnalysisResult `json:"wrinkles,omitempty"`
	CreatedAt    time.Time       `json:"-"`
}

// DetectionBox is one detected lesion in raster-space center format. Boxes
// below the caller's confidence threshold are filtered by the backend and
// never surface here.
type DetectionBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"classId"`
	Class      string  `json:"class"`
	Model      string  `json:"model,omitempty"`
}

// ScanStatistics is the aggregate summary across the fixed category set.
type ScanStatistics struct {
	TotalScans int            `json:"totalScans"`
	ByType     map[string]int `json:"byType"`
}
