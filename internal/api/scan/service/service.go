package scanService

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	scanRepository "dermasnap/internal/api/scan/repository"
	"dermasnap/internal/entity"
	"dermasnap/pkg/artifact"
	"dermasnap/pkg/redis"
	"dermasnap/pkg/utils"
)

type IScanService interface {
	CreateScan(ctx context.Context, req CreateScanData) (string, error)
	GetScanByID(ctx context.Context, id string) (entity.Scan, error)
	GetAllScans(ctx context.Context, limit, skip int) ([]entity.Scan, error)
	DeleteScan(ctx context.Context, id string) error
	GetScanStatistics(ctx context.Context) (entity.ScanStatistics, error)
}

// CreateScanData is the client-assembled scan payload before storage-type
// resolution and artifact persistence.
type CreateScanData struct {
	ImageBase64  string
	SkinTone     entity.SkinTone
	Timestamp    string
	AnalysisType string
	Acne         *entity.AnalysisResult
	Pigmentation *entity.AnalysisResult
	Wrinkles     *entity.AnalysisResult
}

type scanService struct {
	log       *logrus.Logger
	repo      scanRepository.Repository
	artifacts artifact.Store
	cache     redis.IRedis
	utils     utils.IUtils

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(time.Duration)
}

func New(
	log *logrus.Logger,
	repo scanRepository.Repository,
	artifacts artifact.Store,
	cache redis.IRedis,
	utilsPkg utils.IUtils,
) IScanService {
	return &scanService{
		log:       log,
		repo:      repo,
		artifacts: artifacts,
		cache:     cache,
		utils:     utilsPkg,
		sleep:     time.Sleep,
	}
}
