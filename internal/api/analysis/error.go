package analysis

import (
	"dermasnap/pkg/response"
	"net/http"
)

var (
	ErrModelUnavailable    = response.NewError(http.StatusServiceUnavailable, "ML model not available")
	ErrDetectorUnavailable = response.NewError(http.StatusServiceUnavailable, "lesion detector not available")
	ErrInferenceFailed     = response.NewError(http.StatusBadGateway, "model inference failed")
)
