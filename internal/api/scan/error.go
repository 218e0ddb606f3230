package scan

import (
	"dermasnap/pkg/response"
	"net/http"
)

var (
	ErrFullScanUnsupported = response.NewError(http.StatusBadRequest, "full scan is no longer supported")
	ErrInvalidScanID       = response.NewError(http.StatusBadRequest, "invalid scan ID")
	ErrScanNotFound        = response.NewError(http.StatusNotFound, "scan not found")
	ErrInvalidImagePayload = response.NewError(http.StatusBadRequest, "invalid image payload")
)
