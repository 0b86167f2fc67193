// Package catalog holds the supplier and SKU records a purchase plan is
// priced against. Records are read-only inputs keyed by their identifiers.
package catalog

import "math"

// Supplier is a vendor the restaurant orders from. PayoutAddress is the
// on-chain address supplier payments are sent to.
type Supplier struct {
	SupplierID    string `json:"supplierId"`
	Name          string `json:"name"`
	PayoutAddress string `json:"payoutAddress"`
	LeadTimeDays  int    `json:"leadTimeDays"`
}

// Sku is a stock keeping unit. UnitCostUsd is a pointer because upstream
// catalogs may omit the cost, which makes the item unpriceable.
type Sku struct {
	Sku           string   `json:"sku"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	ShelfLifeDays int      `json:"shelfLifeDays"`
	SupplierID    string   `json:"supplierId"`
	UnitCostUsd   *float64 `json:"unitCostUsd,omitempty"`
}

// HasCost reports whether the sku carries a usable unit cost.
func (s Sku) HasCost() bool {
	return s.UnitCostUsd != nil && !math.IsNaN(*s.UnitCostUsd) && !math.IsInf(*s.UnitCostUsd, 0)
}

// Catalog provides keyed lookup of suppliers and skus. Lookups are by
// identifier, never by iteration order.
type Catalog struct {
	suppliers map[string]Supplier
	skus      map[string]Sku
}

// New builds a catalog from supplier and sku lists. Later entries with a
// duplicate identifier overwrite earlier ones.
func New(suppliers []Supplier, skus []Sku) *Catalog {
	c := &Catalog{
		suppliers: make(map[string]Supplier, len(suppliers)),
		skus:      make(map[string]Sku, len(skus)),
	}
	for _, s := range suppliers {
		c.suppliers[s.SupplierID] = s
	}
	for _, s := range skus {
		c.skus[s.Sku] = s
	}
	return c
}

// Supplier looks up a supplier by id.
func (c *Catalog) Supplier(id string) (Supplier, bool) {
	s, ok := c.suppliers[id]
	return s, ok
}

// Sku looks up a sku by id.
func (c *Catalog) Sku(id string) (Sku, bool) {
	s, ok := c.skus[id]
	return s, ok
}
