// Package plan models the purchase plan produced by the upstream planner.
// The plan is a read-only input to payment intent computation.
package plan

// OrderItem is a single sku line within an order.
type OrderItem struct {
	Sku        string  `json:"sku"`
	OrderUnits float64 `json:"orderUnits"`
}

// Order groups the items ordered from one supplier on one date.
type Order struct {
	SupplierID string      `json:"supplierId"`
	OrderDate  string      `json:"orderDate"`
	Items      []OrderItem `json:"items"`
}

// Plan is the full purchase plan. GeneratedAt is carried through to the
// payment intent verbatim; this service never reinterprets it.
type Plan struct {
	GeneratedAt string  `json:"generatedAt"`
	Orders      []Order `json:"orders"`
}
