package scanService

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/net/context"

	"dermasnap/internal/api/scan"
	"dermasnap/internal/entity"
	contextPkg "dermasnap/pkg/context"
	"dermasnap/pkg/log"
)

const (
	// One initial attempt plus up to maxSaveRetries on transient failures,
	// with 1s/2s/4s between attempts.
	maxSaveRetries   = 3
	initialRetryWait = time.Second

	statsCacheKey = "scans:stats:summary"
	statsCacheTTL = 30 * time.Second
)

// CreateScan resolves the storage category (rejecting full scans before any
// storage I/O), writes the image artifact, and persists the metadata record
// with the artifact reference substituted for the raw payload. Transient
// connectivity failures are retried with exponential backoff; everything
// else propagates immediately. The artifact write and the metadata insert
// are not atomic: a crash between them can orphan a file, which is an
// accepted gap.
func (s *scanService) CreateScan(ctx context.Context, req CreateScanData) (string, error) {
	requestID := contextPkg.GetRequestID(ctx)

	storageType, err := resolveStorageType(req.AnalysisType)
	if err != nil {
		return "", err
	}

	imageBytes, err := s.utils.DecodeBase64Payload(req.ImageBase64)
	if err != nil {
		return "", scan.ErrInvalidImagePayload
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return "", err
	}

	record := entity.Scan{
		ID:           id,
		SkinTone:     req.SkinTone,
		Timestamp:    req.Timestamp,
		AnalysisType: storageType,
		Acne:         req.Acne,
		Pigmentation: req.Pigmentation,
		Wrinkles:     req.Wrinkles,
		CreatedAt:    time.Now().UTC(),
	}

	wait := initialRetryWait
	for attempt := 0; ; attempt++ {
		err = s.saveOnce(ctx, &record, req.ImageBase64, imageBytes, storageType)
		if err == nil {
			break
		}

		if attempt >= maxSaveRetries || !isTransient(err) {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"attempt":    attempt + 1,
				"error":      err.Error(),
			}).Error("Failed to save scan")
			return "", err
		}

		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"attempt":    attempt + 1,
			"error":      err.Error(),
		}).Warn("Transient error while saving scan, retrying")

		s.sleep(wait)
		wait *= 2
	}

	s.log.WithFields(log.Fields{
		"request_id": requestID,
		"scan_id":    record.ID,
	}).Info("Scan saved")

	s.invalidateStats(ctx)

	return record.ID, nil
}

func (s *scanService) saveOnce(ctx context.Context, record *entity.Scan, payload string, imageBytes []byte, storageType string) error {
	filename := s.utils.NewArtifactFilename(payload, time.Now())

	uri, key, err := s.artifacts.Save(storageType, filename, imageBytes)
	if err != nil {
		return err
	}

	record.ImageURI = uri
	record.ImagePath = key

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	return repo.Scans.CreateScan(ctx, *record)
}

// isTransient classifies connectivity-class failures (TLS/SSL/handshake)
// that are worth a bounded retry. All other errors are treated as fatal for
// this request.
func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tls") ||
		strings.Contains(msg, "ssl") ||
		strings.Contains(msg, "handshake")
}

func (s *scanService) GetScanByID(ctx context.Context, id string) (entity.Scan, error) {
	if err := s.utils.ValidateULID(id); err != nil {
		return entity.Scan{}, scan.ErrInvalidScanID
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.Scan{}, err
	}

	return repo.Scans.GetScanByID(ctx, id)
}

func (s *scanService) GetAllScans(ctx context.Context, limit, skip int) ([]entity.Scan, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	return repo.Scans.GetAllScans(ctx, limit, skip)
}

// DeleteScan removes the metadata record and best-effort deletes the image
// artifact. Artifact deletion failures are logged and swallowed; the
// metadata deletion is authoritative.
func (s *scanService) DeleteScan(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateULID(id); err != nil {
		return scan.ErrInvalidScanID
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	existing, err := repo.Scans.GetScanByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.ImagePath != "" {
		if err := s.artifacts.Delete(existing.ImagePath); err != nil {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"scan_id":    id,
				"error":      err.Error(),
			}).Warn("Failed to delete image artifact for scan")
		}
	}

	if err := repo.Scans.DeleteScan(ctx, id); err != nil {
		return err
	}

	s.invalidateStats(ctx)

	return nil
}

// GetScanStatistics serves the aggregate summary, cached briefly in Redis.
// Cache failures degrade silently to the database.
func (s *scanService) GetScanStatistics(ctx context.Context) (entity.ScanStatistics, error) {
	if cached, err := s.cache.GetJSON(ctx, statsCacheKey); err == nil {
		var stats entity.ScanStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return stats, nil
		}
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.ScanStatistics{}, err
	}

	byType, total, err := repo.Scans.CountByType(ctx)
	if err != nil {
		return entity.ScanStatistics{}, err
	}

	stats := entity.ScanStatistics{
		TotalScans: total,
		ByType:     byType,
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.SetJSON(ctx, statsCacheKey, payload, statsCacheTTL)
	}

	return stats, nil
}

func (s *scanService) invalidateStats(ctx context.Context) {
	_ = s.cache.Delete(ctx, statsCacheKey)
}
