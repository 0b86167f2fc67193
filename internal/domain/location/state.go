// Package location models a restaurant location's planning state: the
// catalog and inventory snapshot the operator maintains per location. The
// payment core never reads this state directly; it exists so the service is
// operable end to end.
package location

import (
	"time"

	"mise/internal/domain/catalog"
)

// State is the full planning state stored per location key.
type State struct {
	Suppliers []catalog.Supplier `json:"suppliers"`
	Skus      []catalog.Sku      `json:"skus"`
	Inventory map[string]float64 `json:"inventory,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
