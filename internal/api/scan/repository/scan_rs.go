package scanRepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"dermasnap/internal/api/scan"
	"dermasnap/internal/entity"
	contextPkg "dermasnap/pkg/context"
)

type ScanDB struct {
	ID           sql.NullString `db:"id"`
	ImageURI     sql.NullString `db:"image_uri"`
	ImagePath    sql.NullString `db:"image_path"`
	SkinToneR    sql.NullInt64  `db:"skin_tone_r"`
	SkinToneG    sql.NullInt64  `db:"skin_tone_g"`
	SkinToneB    sql.NullInt64  `db:"skin_tone_b"`
	ScannedAt    sql.NullString `db:"scanned_at"`
	AnalysisType sql.NullString `db:"analysis_type"`
	Acne         []byte         `db:"acne"`
	Pigmentation []byte         `db:"pigmentation"`
	Wrinkles     []byte         `db:"wrinkles"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r *scansRepository) CreateScan(ctx context.Context, s entity.Scan) error {
	requestID := contextPkg.GetRequestID(ctx)

	acne, err := marshalAnalysis(s.Acne)
	if err != nil {
		return err
	}
	pigmentation, err := marshalAnalysis(s.Pigmentation)
	if err != nil {
		return err
	}
	wrinkles, err := marshalAnalysis(s.Wrinkles)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":            s.ID,
		"image_uri":     s.ImageURI,
		"image_path":    s.ImagePath,
		"skin_tone_r":   s.SkinTone.R,
		"skin_tone_g":   s.SkinTone.G,
		"skin_tone_b":   s.SkinTone.B,
		"scanned_at":    s.Timestamp,
		"analysis_type": s.AnalysisType,
		"acne":          acne,
		"pigmentation":  pigmentation,
		"wrinkles":      wrinkles,
		"created_at":    s.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateScan, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateScan")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating scan")
		return err
	}

	return nil
}

func (r *scansRepository) GetScanByID(ctx context.Context, id string) (entity.Scan, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row ScanDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetScanByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScanByID named query preparation err")
		return entity.Scan{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("GetScanByID no rows found")
			return entity.Scan{}, scan.ErrScanNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScanByID execution err")
		return entity.Scan{}, err
	}

	return r.makeScan(row)
}

func (r *scansRepository) GetAllScans(ctx context.Context, limit, skip int) ([]entity.Scan, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []ScanDB

	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": skip,
	}

	query, args, err := sqlx.Named(queryGetAllScans, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllScans named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllScans execution err")
		return nil, err
	}

	scans := make([]entity.Scan, 0, len(rows))
	for _, row := range rows {
		s, err := r.makeScan(row)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}

	return scans, nil
}

func (r *scansRepository) DeleteScan(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteScan, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteScan named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteScan execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteScan rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeleteScan no rows affected")
		return scan.ErrScanNotFound
	}

	return nil
}

// CountByType aggregates scans over the fixed category set. Categories with
// no rows report zero.
func (r *scansRepository) CountByType(ctx context.Context) (map[string]int, int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	rows, err := r.q.QueryxContext(ctx, r.q.Rebind(queryCountByType))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountByType execution err")
		return nil, 0, err
	}
	defer rows.Close()

	// Deprecated "pigmentation" rows predate the pimple rename and still
	// count toward their own bucket.
	counts := map[string]int{"pigmentation": 0}
	for _, storageType := range entity.StorageTypes {
		counts[storageType] = 0
	}
	total := 0

	for rows.Next() {
		var analysisType string
		var count int
		if err := rows.Scan(&analysisType, &count); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("CountByType scan err")
			return nil, 0, err
		}
		counts[analysisType] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return counts, total, nil
}

func (r *scansRepository) makeScan(row ScanDB) (entity.Scan, error) {
	acne, err := unmarshalAnalysis(row.Acne)
	if err != nil {
		return entity.Scan{}, err
	}
	pigmentation, err := unmarshalAnalysis(row.Pigmentation)
	if err != nil {
		return entity.Scan{}, err
	}
	wrinkles, err := unmarshalAnalysis(row.Wrinkles)
	if err != nil {
		return entity.Scan{}, err
	}

	return entity.Scan{
		ID:        row.ID.String,
		ImageURI:  row.ImageURI.String,
		ImagePath: row.ImagePath.String,
		SkinTone: entity.SkinTone{
			R: int(row.SkinToneR.Int64),
			G: int(row.SkinToneG.Int64),
			B: int(row.SkinToneB.Int64),
		},
		Timestamp:    row.ScannedAt.String,
		AnalysisType: row.AnalysisType.String,
		Acne:         acne,
		Pigmentation: pigmentation,
		Wrinkles:     wrinkles,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func marshalAnalysis(result *entity.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	return json.Marshal(result)
}

func unmarshalAnalysis(data []byte) (*entity.AnalysisResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result entity.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
