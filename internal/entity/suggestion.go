package entity

import "time"

// Suggestion carries the metadata fields an extractor proposed for a
// document. Nil fields mean the extractor could not tell.
type Suggestion struct {
	Date          *time.Time `json:"date,omitempty"`
	Correspondent *string    `json:"correspondent,omitempty"`
	DocType       *string    `json:"doc_type,omitempty"`
}

// ApplyTo fills the empty fields of meta from the suggestion, leaving
// user-edited values alone.
func (s Suggestion) ApplyTo(meta *Metadata) {
	if s.Date != nil && meta.Date.IsZero() {
		meta.Date = *s.Date
	}
	if s.Correspondent != nil && meta.Correspondent == "" {
		meta.Correspondent = *s.Correspondent
	}
	if s.DocType != nil && meta.DocType == "" {
		meta.DocType = *s.DocType
	}
}
