package entity

import "time"

// Metadata is the resolved document metadata a placement is computed from.
// It is built per request from extracted or user-edited values and never
// persisted by the core.
type Metadata struct {
	Date          time.Time `json:"date"`
	Correspondent string    `json:"correspondent"`
	DocType       string    `json:"doc_type"`
}

// Year returns the four-digit year used as the second archive level.
func (m Metadata) Year() string {
	return m.Date.Format("2006")
}
