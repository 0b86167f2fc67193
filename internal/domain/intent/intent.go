// Package intent models the payment intent: a deterministic, budget-checked
// set of supplier payments derived from a priced purchase plan. An intent is
// immutable once built; a new preflight call supersedes it rather than
// mutating it.
package intent

import (
	"fmt"
	"math"
	"time"
)

// DefaultPendingWindowMinutes is applied when the caller supplies no window
// or a non-positive one.
const DefaultPendingWindowMinutes = 15

// TransferItem is one audited line contributing to a supplier transfer.
type TransferItem struct {
	Sku         string  `json:"sku"`
	Units       float64 `json:"units"`
	UnitCostUsd float64 `json:"unitCostUsd"`
}

// Transfer is one supplier-level payment line. AmountUsd is the sum of
// units*unitCostUsd over Items, rounded to cents on the summed subtotal.
type Transfer struct {
	SupplierID string         `json:"supplierId"`
	AmountUsd  float64        `json:"amountUsd"`
	Memo       string         `json:"memo"`
	Items      []TransferItem `json:"items"`
}

// Validation carries the intent's budget check outcome and any per-item
// warnings collected while pricing the plan.
type Validation struct {
	BudgetCapUsd *float64 `json:"budgetCapUsd,omitempty"`
	TotalUsd     float64  `json:"totalUsd"`
	Warnings     []string `json:"warnings,omitempty"`
}

// PaymentIntent is the computed payment set awaiting execution approval.
type PaymentIntent struct {
	IntentID        string     `json:"intentId"`
	CreatedAt       time.Time  `json:"createdAt"`
	Buyer           string     `json:"buyer"`
	PlanGeneratedAt string     `json:"planGeneratedAt"`
	PendingUntil    time.Time  `json:"pendingUntil"`
	Transfers       []Transfer `json:"transfers"`
	Validation      Validation `json:"validation"`
}

// Rejection is returned when no intent can be produced: either the budget
// cap is exceeded or the plan yields no priced transfers. It carries the
// diagnostic totals and warnings so the caller can see why.
type Rejection struct {
	Message      string   `json:"error"`
	BudgetCapUsd *float64 `json:"budgetCapUsd,omitempty"`
	TotalUsd     *float64 `json:"totalUsd,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

func (r *Rejection) Error() string {
	if r.TotalUsd != nil && r.BudgetCapUsd != nil {
		return fmt.Sprintf("%s: total %.2f exceeds cap %.2f", r.Message, *r.TotalUsd, *r.BudgetCapUsd)
	}
	return r.Message
}

// RoundCents rounds a non-negative USD amount to two decimal places using
// round-half-up. Rounding is applied once to a summed subtotal, never per
// line, so the emitted amount equals the rounded sum of its items.
func RoundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// NormalizePendingWindow returns the pending window to apply: the given
// number of minutes when positive, the default otherwise.
func NormalizePendingWindow(minutes int) time.Duration {
	if minutes <= 0 {
		minutes = DefaultPendingWindowMinutes
	}
	return time.Duration(minutes) * time.Minute
}
