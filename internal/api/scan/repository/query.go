package scanRepository

const (
	queryCreateScan = `
		INSERT INTO scans (
			id,
			image_uri,
			image_path,
			skin_tone_r,
			skin_tone_g,
			skin_tone_b,
			scanned_at,
			analysis_type,
			acne,
			pigmentation,
			wrinkles,
			created_at
		) VALUES (
			:id,
			:image_uri,
			:image_path,
			:skin_tone_r,
			:skin_tone_g,
			:skin_tone_b,
			:scanned_at,
			:analysis_type,
			:acne,
			:pigmentation,
			:wrinkles,
			:created_at
		)
	`

	queryGetScanByID = `
		SELECT
			id,
			image_uri,
			image_path,
			skin_tone_r,
			skin_tone_g,
			skin_tone_b,
			scanned_at,
			analysis_type,
			acne,
			pigmentation,
			wrinkles,
			created_at
		FROM scans
		WHERE id = :id
	`

	queryGetAllScans = `
		SELECT
			id,
			image_uri,
			image_path,
			skin_tone_r,
			skin_tone_g,
			skin_tone_b,
			scanned_at,
			analysis_type,
			acne,
			pigmentation,
			wrinkles,
			created_at
		FROM scans
		ORDER BY scanned_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryDeleteScan = `
		DELETE FROM scans
		WHERE id = :id
	`

	queryCountByType = `
		SELECT
			analysis_type,
			COUNT(*) AS total
		FROM scans
		GROUP BY analysis_type
	`
)
