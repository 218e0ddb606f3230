package scanService

import (
	"strings"

	"dermasnap/internal/api/scan"
	"dermasnap/internal/entity"
)

// resolveStorageType normalizes a client-supplied analysis category onto the
// persisted category buckets. Full scans were removed from the product and
// are rejected outright; pigmentation is stored under the pimple bucket
// (rename affects storage only, not metric shapes). Unrecognized values
// default to acne rather than rejecting.
func resolveStorageType(analysisType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(analysisType))

	switch normalized {
	case "full":
		return "", scan.ErrFullScanUnsupported
	case "pigmentation":
		return entity.StorageTypePimple, nil
	case entity.StorageTypeAcne, entity.StorageTypeWrinkles, entity.StorageTypePimple:
		return normalized, nil
	default:
		return entity.StorageTypeAcne, nil
	}
}
