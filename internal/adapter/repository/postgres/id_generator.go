package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator produces lexicographically sortable entry and snapshot IDs.
// Store backends share it so IDs sort by creation time regardless of backend.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID in canonical form.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
