package catalog

import "context"

// Snapshot is the persisted state of a catalog: two string lists and the
// alias map. Stores must return the last-saved snapshot from Load and be
// durable before Save returns.
type Snapshot struct {
	Correspondents []string          `json:"correspondents"`
	Tags           []string          `json:"tags"`
	Aliases        map[string]string `json:"aliases"`
}

// Store is the persistence contract for a Catalog.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
