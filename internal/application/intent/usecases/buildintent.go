package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"mise/internal/domain/catalog"
	"mise/internal/domain/intent"
	"mise/internal/domain/plan"
	"mise/internal/shared/logger"
)

// BuildIntentCommand carries everything needed to price a purchase plan
// into a payment intent. All fields are read-only inputs.
type BuildIntentCommand struct {
	Buyer                string
	BudgetCapUsd         *float64
	Suppliers            []catalog.Supplier
	Skus                 []catalog.Sku
	Plan                 plan.Plan
	PendingWindowMinutes int
}

// BuildIntentUseCase turns a priced purchase plan into a budget-checked,
// auditable set of supplier transfers. The computation is pure; the only
// non-deterministic inputs (intent id, timestamps) come from the injected
// now/newID funcs so the financial fields are independently testable.
type BuildIntentUseCase struct {
	now    func() time.Time
	newID  func() string
	logger logger.Interface
}

func NewBuildIntentUseCase(log logger.Interface) *BuildIntentUseCase {
	return &BuildIntentUseCase{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log,
	}
}

// NewBuildIntentUseCaseWithDeps injects the clock and id source. Used by
// tests to pin the non-deterministic fields.
func NewBuildIntentUseCaseWithDeps(now func() time.Time, newID func() string, log logger.Interface) *BuildIntentUseCase {
	return &BuildIntentUseCase{
		now:    now,
		newID:  newID,
		logger: log,
	}
}

// supplierAccum collects the valid priced items for one supplier while the
// plan's orders are walked in their given order.
type supplierAccum struct {
	name     string
	subtotal float64
	items    []intent.TransferItem
}

// Execute prices the plan and returns the intent, or an *intent.Rejection
// when the budget cap is exceeded or nothing is payable.
func (uc *BuildIntentUseCase) Execute(ctx context.Context, cmd BuildIntentCommand) (*intent.PaymentIntent, error) {
	cat := catalog.New(cmd.Suppliers, cmd.Skus)

	var warnings []string
	var supplierOrder []string
	accums := make(map[string]*supplierAccum)

	for _, order := range cmd.Plan.Orders {
		supplier, ok := cat.Supplier(order.SupplierID)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown supplier %q: order skipped", order.SupplierID))
			continue
		}

		acc := accums[order.SupplierID]
		if acc == nil {
			acc = &supplierAccum{name: supplier.Name}
			accums[order.SupplierID] = acc
			supplierOrder = append(supplierOrder, order.SupplierID)
		}

		for _, item := range order.Items {
			sku, ok := cat.Sku(item.Sku)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown sku %q: item skipped", item.Sku))
				continue
			}
			// Nothing to order is not an error.
			if item.OrderUnits <= 0 || math.IsNaN(item.OrderUnits) || math.IsInf(item.OrderUnits, 0) {
				continue
			}
			if !sku.HasCost() {
				warnings = append(warnings, fmt.Sprintf("sku %q has no unit cost: cannot compute deterministic payment without cost", item.Sku))
				continue
			}

			acc.subtotal += item.OrderUnits * *sku.UnitCostUsd
			acc.items = append(acc.items, intent.TransferItem{
				Sku:         item.Sku,
				Units:       item.OrderUnits,
				UnitCostUsd: *sku.UnitCostUsd,
			})
		}
	}

	// Transfers follow the suppliers' first appearance in the plan, so the
	// output is identical across calls for identical input.
	var transfers []intent.Transfer
	var totalRaw float64
	for _, supplierID := range supplierOrder {
		acc := accums[supplierID]
		amount := intent.RoundCents(acc.subtotal)
		if amount <= 0 {
			continue
		}
		transfers = append(transfers, intent.Transfer{
			SupplierID: supplierID,
			AmountUsd:  amount,
			Memo:       fmt.Sprintf("supply payment to %s", acc.name),
			Items:      acc.items,
		})
		totalRaw += amount
	}

	if len(transfers) == 0 {
		rejWarnings := warnings
		if len(rejWarnings) == 0 {
			rejWarnings = []string{"no priced items in plan"}
		}
		return nil, &intent.Rejection{
			Message:  "no priced items in plan",
			Warnings: rejWarnings,
		}
	}

	totalUsd := intent.RoundCents(totalRaw)

	if cmd.BudgetCapUsd != nil && totalUsd > *cmd.BudgetCapUsd {
		uc.logger.Warnw("payment intent rejected: budget cap exceeded",
			"total_usd", totalUsd,
			"budget_cap_usd", *cmd.BudgetCapUsd,
		)
		return nil, &intent.Rejection{
			Message:      "budget cap exceeded",
			BudgetCapUsd: cmd.BudgetCapUsd,
			TotalUsd:     &totalUsd,
			Warnings:     warnings,
		}
	}

	createdAt := uc.now().UTC()
	result := &intent.PaymentIntent{
		IntentID:        uc.newID(),
		CreatedAt:       createdAt,
		Buyer:           cmd.Buyer,
		PlanGeneratedAt: cmd.Plan.GeneratedAt,
		PendingUntil:    createdAt.Add(intent.NormalizePendingWindow(cmd.PendingWindowMinutes)),
		Transfers:       transfers,
		Validation: intent.Validation{
			BudgetCapUsd: cmd.BudgetCapUsd,
			TotalUsd:     totalUsd,
			Warnings:     warnings,
		},
	}

	uc.logger.Infow("payment intent built",
		"intent_id", result.IntentID,
		"transfers", len(transfers),
		"total_usd", totalUsd,
		"warnings", len(warnings),
	)

	return result, nil
}
