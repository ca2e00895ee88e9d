package initializers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"http-codes-api/models"
	"http-codes-api/repository"
)

//go:embed http_codes_master.json
var httpCodesMaster []byte

// InitHTTPCodes loads the bundled HTTP status code reference data into
// the catalog. The import is idempotent by record id, so it runs on
// every application start.
func InitHTTPCodes(codesRepo *repository.HTTPCodesRepository) error {
	var records []models.HTTPCode
	if err := json.Unmarshal(httpCodesMaster, &records); err != nil {
		return fmt.Errorf("parse http codes master data: %w", err)
	}
	for _, rec := range records {
		if rec.ID == "" || rec.Code < 100 || rec.Code > 599 {
			return fmt.Errorf("invalid master record: id=%q code=%d", rec.ID, rec.Code)
		}
	}
	inserted, err := codesRepo.Import(records)
	if err != nil {
		return fmt.Errorf("import http codes: %w", err)
	}
	slog.Info("http codes master data ready", "total", len(records), "inserted", inserted)
	return nil
}
