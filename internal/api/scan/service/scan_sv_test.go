package scanService

import (
	"encoding/base64"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"

	"dermasnap/internal/api/scan"
	scanRepository "dermasnap/internal/api/scan/repository"
	"dermasnap/internal/entity"
	"dermasnap/pkg/redis"
	"dermasnap/pkg/utils"
)

type fakeScans struct {
	records map[string]entity.Scan

	createErrs  []error
	createCalls int
	countCalls  int
}

func newFakeScans() *fakeScans {
	return &fakeScans{records: make(map[string]entity.Scan)}
}

func (f *fakeScans) CreateScan(_ context.Context, s entity.Scan) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.records[s.ID] = s
	return nil
}

func (f *fakeScans) GetScanByID(_ context.Context, id string) (entity.Scan, error) {
	s, ok := f.records[id]
	if !ok {
		return entity.Scan{}, scan.ErrScanNotFound
	}
	return s, nil
}

func (f *fakeScans) GetAllScans(_ context.Context, limit, skip int) ([]entity.Scan, error) {
	out := make([]entity.Scan, 0, len(f.records))
	for _, s := range f.records {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeScans) DeleteScan(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return scan.ErrScanNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeScans) CountByType(_ context.Context) (map[string]int, int, error) {
	f.countCalls++
	byType := map[string]int{}
	for _, s := range f.records {
		byType[s.AnalysisType]++
	}
	return byType, len(f.records), nil
}

type fakeRepository struct {
	scans *fakeScans
}

func (f *fakeRepository) NewClient(tx bool) (scanRepository.Client, error) {
	return scanRepository.Client{
		Scans:    f.scans,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeStore struct {
	saves   []string
	deletes []string
	saveErr error
}

func (f *fakeStore) Save(category, filename string, data []byte) (string, string, error) {
	if f.saveErr != nil {
		return "", "", f.saveErr
	}
	f.saves = append(f.saves, category+"/"+filename)
	return "/uploads/" + category + "/" + filename, category + "/" + filename, nil
}

func (f *fakeStore) Delete(key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

type fakeCache struct {
	values map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (f *fakeCache) SetJSON(_ context.Context, key string, payload []byte, _ time.Duration) error {
	f.values[key] = payload
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string) ([]byte, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

type fixture struct {
	svc    *scanService
	scans  *fakeScans
	store  *fakeStore
	cache  *fakeCache
	sleeps []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fx := &fixture{
		scans: newFakeScans(),
		store: &fakeStore{},
		cache: newFakeCache(),
	}

	svc := New(logger, &fakeRepository{scans: fx.scans}, fx.store, fx.cache, utils.New()).(*scanService)
	svc.sleep = func(d time.Duration) {
		fx.sleeps = append(fx.sleeps, d)
	}

	fx.svc = svc
	return fx
}

func validPayload() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
}

func TestResolveStorageType(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"acne", entity.StorageTypeAcne},
		{"wrinkles", entity.StorageTypeWrinkles},
		{"pimple", entity.StorageTypePimple},
		{"pigmentation", entity.StorageTypePimple},
		{"PIGMENTATION", entity.StorageTypePimple},
		{"  Acne  ", entity.StorageTypeAcne},
		{"something-else", entity.StorageTypeAcne},
		{"", entity.StorageTypeAcne},
	}

	for _, tc := range cases {
		got, err := resolveStorageType(tc.input)
		require.NoError(t, err, "input: %q", tc.input)
		require.Equal(t, tc.want, got, "input: %q", tc.input)
	}
}

func TestResolveStorageType_RejectsFull(t *testing.T) {
	_, err := resolveStorageType("full")
	require.ErrorIs(t, err, scan.ErrFullScanUnsupported)

	_, err = resolveStorageType(" FULL ")
	require.ErrorIs(t, err, scan.ErrFullScanUnsupported)
}

func TestCreateScan_Success(t *testing.T) {
	fx := newFixture(t)

	id, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		SkinTone:     entity.SkinTone{R: 200, G: 150, B: 120},
		Timestamp:    "2026-08-25T10:00:00Z",
		AnalysisType: "pigmentation",
	})
	require.NoError(t, err)

	_, parseErr := ulid.ParseStrict(id)
	require.NoError(t, parseErr)

	saved := fx.scans.records[id]
	require.Equal(t, entity.StorageTypePimple, saved.AnalysisType)
	require.NotEmpty(t, saved.ImageURI)
	require.NotEmpty(t, saved.ImagePath)
	require.Len(t, fx.store.saves, 1)
	require.Contains(t, fx.store.saves[0], "pimple/")
}

func TestCreateScan_RejectsFullBeforeStorage(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "full",
	})
	require.ErrorIs(t, err, scan.ErrFullScanUnsupported)
	require.Empty(t, fx.store.saves)
	require.Zero(t, fx.scans.createCalls)
}

func TestCreateScan_InvalidPayload(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  "not base64 at all!!!",
		AnalysisType: "acne",
	})
	require.ErrorIs(t, err, scan.ErrInvalidImagePayload)
	require.Empty(t, fx.store.saves)
}

func TestCreateScan_RetriesTransientFailures(t *testing.T) {
	fx := newFixture(t)
	transient := errors.New("tls handshake timeout")
	fx.scans.createErrs = []error{transient, transient, transient}

	id, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "acne",
	})
	require.NoError(t, err)

	require.Equal(t, 4, fx.scans.createCalls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, fx.sleeps)
	require.Contains(t, fx.scans.records, id)
}

func TestCreateScan_ExhaustsRetries(t *testing.T) {
	fx := newFixture(t)
	transient := errors.New("ssl connection reset")
	fx.scans.createErrs = []error{transient, transient, transient, transient}

	_, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "acne",
	})
	require.ErrorIs(t, err, transient)

	require.Equal(t, 4, fx.scans.createCalls)
	require.Len(t, fx.sleeps, 3)
}

func TestCreateScan_FatalErrorsDoNotRetry(t *testing.T) {
	fx := newFixture(t)
	fatal := errors.New("duplicate key value violates unique constraint")
	fx.scans.createErrs = []error{fatal}

	_, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "acne",
	})
	require.ErrorIs(t, err, fatal)

	require.Equal(t, 1, fx.scans.createCalls)
	require.Empty(t, fx.sleeps)
}

func TestIsTransient(t *testing.T) {
	require.True(t, isTransient(errors.New("TLS handshake failed")))
	require.True(t, isTransient(errors.New("SSL error during write")))
	require.True(t, isTransient(errors.New("bad handshake with server")))
	require.False(t, isTransient(errors.New("connection refused")))
	require.False(t, isTransient(errors.New("syntax error at or near")))
}

func TestGetScanByID_MalformedID(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.GetScanByID(context.Background(), "not-a-ulid")
	require.ErrorIs(t, err, scan.ErrInvalidScanID)
}

func TestDeleteScan(t *testing.T) {
	fx := newFixture(t)

	id, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "wrinkles",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteScan(context.Background(), id))
	require.NotContains(t, fx.scans.records, id)
	require.Len(t, fx.store.deletes, 1)

	// Second delete finds nothing.
	require.ErrorIs(t, fx.svc.DeleteScan(context.Background(), id), scan.ErrScanNotFound)
	require.Len(t, fx.store.deletes, 1)
}

func TestDeleteScan_MalformedID(t *testing.T) {
	fx := newFixture(t)

	require.ErrorIs(t, fx.svc.DeleteScan(context.Background(), "zzz"), scan.ErrInvalidScanID)
}

func TestGetScanStatistics_CachesSummary(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "acne",
	})
	require.NoError(t, err)

	stats, err := fx.svc.GetScanStatistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalScans)
	require.Equal(t, 1, stats.ByType[entity.StorageTypeAcne])
	require.Equal(t, 1, fx.scans.countCalls)

	// Second read is served from the cache.
	again, err := fx.svc.GetScanStatistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, stats, again)
	require.Equal(t, 1, fx.scans.countCalls)
}

func TestCreateScan_InvalidatesStatsCache(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.GetScanStatistics(context.Background())
	require.NoError(t, err)
	require.Contains(t, fx.cache.values, statsCacheKey)

	_, err = fx.svc.CreateScan(context.Background(), CreateScanData{
		ImageBase64:  validPayload(),
		AnalysisType: "acne",
	})
	require.NoError(t, err)

	require.NotContains(t, fx.cache.values, statsCacheKey)
}
