package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one inbox file moving through the pipeline.
type Document struct {
	ID            uuid.UUID `json:"id"`
	Path          string    `json:"path"`
	SizeBytes     int64     `json:"size_bytes"`
	HashHex       string    `json:"hash_hex"`
	DetectedAt    time.Time `json:"detected_at"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	Meta          Metadata  `json:"meta"`
}
