package repository

import (
	"database/sql"

	"http-codes-api/models"
	"http-codes-api/pkg/pattern"

	"github.com/lib/pq"
)

type HTTPCodesRepository struct {
	db *sql.DB
}

func NewHTTPCodesRepository(db *sql.DB) *HTTPCodesRepository {
	return &HTTPCodesRepository{db: db}
}

const httpCodeColumns = "id, code, name, description, image"

// GetAll returns the full catalog in ascending code order.
func (r *HTTPCodesRepository) GetAll() ([]models.HTTPCode, error) {
	rows, err := r.db.Query(`
		SELECT ` + httpCodeColumns + `
		FROM http_codes
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHTTPCodes(rows)
}

// GetByPattern returns the catalog records whose code matches a
// normalized wildcard pattern, in ascending code order. The pattern must
// have been produced by pattern.Normalize.
func (r *HTTPCodesRepository) GetByPattern(norm string) ([]models.HTTPCode, error) {
	rows, err := r.db.Query(`
		SELECT `+httpCodeColumns+`
		FROM http_codes
		WHERE code::text LIKE $1
		ORDER BY code
	`, pattern.LikeExpr(norm))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHTTPCodes(rows)
}

func (r *HTTPCodesRepository) GetByID(id string) (*models.HTTPCode, error) {
	var c models.HTTPCode
	err := r.db.QueryRow(`
		SELECT `+httpCodeColumns+`
		FROM http_codes WHERE id = $1
	`, id).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Image)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExistsAll reports whether every distinct id references a stored catalog
// record. An empty set is vacuously true; callers decide whether they
// require at least one code.
func (r *HTTPCodesRepository) ExistsAll(ids []string) (bool, error) {
	distinct := dedupe(ids)
	if len(distinct) == 0 {
		return true, nil
	}
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM http_codes WHERE id = ANY($1)
	`, pq.Array(distinct)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(distinct), nil
}

// Import bulk-loads catalog records. Re-importing is a no-op for ids that
// already exist, so the seed can run on every start.
func (r *HTTPCodesRepository) Import(records []models.HTTPCode) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, rec := range records {
		res, err := tx.Exec(`
			INSERT INTO http_codes (id, code, name, description, image)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, rec.ID, rec.Code, rec.Name, rec.Description, rec.Image)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// SetImage replaces the image reference of a catalog record, used after
// an image object has been stored for the code.
func (r *HTTPCodesRepository) SetImage(id, image string) error {
	_, err := r.db.Exec(`
		UPDATE http_codes SET image = $2 WHERE id = $1
	`, id, image)
	return err
}

func scanHTTPCodes(rows *sql.Rows) ([]models.HTTPCode, error) {
	var items []models.HTTPCode
	for rows.Next() {
		var c models.HTTPCode
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Image); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
