package models

import "time"

// SavedFilter is a named, owner-scoped list of HTTP code references plus
// the raw search query that produced it. Name is unique per owner
// (case-sensitive); HTTPCodes preserves the order the caller supplied.
type SavedFilter struct {
	ID         string     `json:"id"`
	UserID     int        `json:"-"`
	Name       string     `json:"name"`
	Query      string     `json:"query"`
	HTTPCodes  []HTTPCode `json:"httpCodes"`
	CreatedAt  time.Time  `json:"createdAt"`
	ModifiedAt time.Time  `json:"modifiedAt"`
}
