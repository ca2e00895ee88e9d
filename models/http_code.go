package models

// HTTPCode is an immutable catalog record for one HTTP status code.
// Records are bulk-imported from the bundled reference dataset at startup
// and are never mutated by end users; IDs are stable across re-imports.
type HTTPCode struct {
	ID          string `json:"id"`
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
