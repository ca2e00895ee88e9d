package repository

import (
	"database/sql"
	"errors"

	"http-codes-api/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateName is returned when a create or update collides with the
// (user_id, name) uniqueness constraint. The constraint lives in the
// database so that two concurrent writes for the same owner and name
// cannot both pass an application-level pre-check.
var ErrDuplicateName = errors.New("filter name already exists for this user")

const pqUniqueViolation = "23505"

type SavedFiltersRepository struct {
	db *sql.DB
}

func NewSavedFiltersRepository(db *sql.DB) *SavedFiltersRepository {
	return &SavedFiltersRepository{db: db}
}

// Create persists a new filter with a freshly generated id together with
// its ordered code references in one transaction; nothing is written on
// any failure path.
func (r *SavedFiltersRepository) Create(userID int, name, query string, codeIDs []string) (*models.SavedFilter, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO saved_filters (id, user_id, name, query, created_at, modified_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, id, userID, name, query)
	if err != nil {
		return nil, translateUnique(err)
	}
	if err := insertCodeRefs(tx, id, codeIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, translateUnique(err)
	}
	return r.GetByID(id, userID)
}

// Update atomically replaces a filter's name and code references. The
// query and id remain unchanged. It returns (nil, nil) when no filter
// with the given id exists under this owner, so a foreign filter is
// indistinguishable from a missing one.
func (r *SavedFiltersRepository) Update(id string, userID int, name string, codeIDs []string) (*models.SavedFilter, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE saved_filters SET name = $3, modified_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID, name)
	if err != nil {
		return nil, translateUnique(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	if _, err := tx.Exec(`DELETE FROM saved_filter_codes WHERE filter_id = $1`, id); err != nil {
		return nil, err
	}
	if err := insertCodeRefs(tx, id, codeIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, translateUnique(err)
	}
	return r.GetByID(id, userID)
}

// NameExists reports whether the owner already has a filter with this
// exact name. It exists to report duplicate names ahead of other
// rejection reasons; the (user_id, name) constraint is still what makes
// the check race-safe.
func (r *SavedFiltersRepository) NameExists(userID int, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM saved_filters WHERE user_id = $1 AND name = $2
		)
	`, userID, name).Scan(&exists)
	return exists, err
}

// NameUsedByOther is the update-time variant of NameExists: the filter
// being updated may keep its own name.
func (r *SavedFiltersRepository) NameUsedByOther(userID int, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM saved_filters WHERE user_id = $1 AND name = $2 AND id <> $3
		)
	`, userID, name, excludeID).Scan(&exists)
	return exists, err
}

// GetByID looks a filter up by id and owner in a single predicate and
// returns (nil, nil) when there is no match.
func (r *SavedFiltersRepository) GetByID(id string, userID int) (*models.SavedFilter, error) {
	var f models.SavedFilter
	err := r.db.QueryRow(`
		SELECT id, user_id, name, query, created_at, modified_at
		FROM saved_filters
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&f.ID, &f.UserID, &f.Name, &f.Query, &f.CreatedAt, &f.ModifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	codes, err := r.codesForFilter(f.ID)
	if err != nil {
		return nil, err
	}
	f.HTTPCodes = codes
	return &f, nil
}

// GetAll returns the owner's filters in creation order. The seq column
// is a serial assigned at insert, so same-timestamp creates still come
// back in the order they were made.
func (r *SavedFiltersRepository) GetAll(userID int) ([]*models.SavedFilter, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, query, created_at, modified_at
		FROM saved_filters
		WHERE user_id = $1
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.SavedFilter
	for rows.Next() {
		var f models.SavedFilter
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Query, &f.CreatedAt, &f.ModifiedAt); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, f := range items {
		codes, err := r.codesForFilter(f.ID)
		if err != nil {
			return nil, err
		}
		f.HTTPCodes = codes
	}
	return items, nil
}

// Delete removes a filter owned by the user. It reports false when
// nothing matched, so deleting twice or deleting a foreign filter is not
// an error.
func (r *SavedFiltersRepository) Delete(id string, userID int) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM saved_filters WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SavedFiltersRepository) codesForFilter(filterID string) ([]models.HTTPCode, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.code, c.name, c.description, c.image
		FROM saved_filter_codes sfc
		JOIN http_codes c ON c.id = sfc.code_id
		WHERE sfc.filter_id = $1
		ORDER BY sfc.ordinal
	`, filterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	codes, err := scanHTTPCodes(rows)
	if err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []models.HTTPCode{}
	}
	return codes, nil
}

func insertCodeRefs(tx *sql.Tx, filterID string, codeIDs []string) error {
	for i, codeID := range codeIDs {
		if _, err := tx.Exec(`
			INSERT INTO saved_filter_codes (filter_id, ordinal, code_id)
			VALUES ($1, $2, $3)
		`, filterID, i, codeID); err != nil {
			return err
		}
	}
	return nil
}

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicateName
	}
	return err
}
