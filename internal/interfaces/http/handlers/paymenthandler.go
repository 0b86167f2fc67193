package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	executionUsecases "mise/internal/application/execution/usecases"
	intentUsecases "mise/internal/application/intent/usecases"
	"mise/internal/domain/catalog"
	"mise/internal/domain/intent"
	"mise/internal/domain/plan"
	apperrors "mise/internal/shared/errors"
	"mise/internal/shared/logger"
	"mise/internal/shared/utils"
)

// PaymentHandler exposes the payment intent preflight and the on-chain
// execution endpoints. pendingWindow is the configured fallback window in
// minutes, applied when a request carries no usable window of its own.
type PaymentHandler struct {
	buildIntentUC *intentUsecases.BuildIntentUseCase
	executeUC     *executionUsecases.ExecuteTransferUseCase
	pendingWindow int
	logger        logger.Interface
}

func NewPaymentHandler(
	buildIntentUC *intentUsecases.BuildIntentUseCase,
	executeUC *executionUsecases.ExecuteTransferUseCase,
	pendingWindowMinutes int,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		buildIntentUC: buildIntentUC,
		executeUC:     executeUC,
		pendingWindow: pendingWindowMinutes,
		logger:        logger,
	}
}

// PlanInput carries the buyer, budget policy and catalog the plan is priced
// against.
type PlanInput struct {
	LocationID   string             `json:"locationId"`
	Buyer        string             `json:"buyer"`
	BudgetCapUsd *float64           `json:"budgetCapUsd"`
	Suppliers    []catalog.Supplier `json:"suppliers"`
	Skus         []catalog.Sku      `json:"skus"`
}

// PreflightRequest is the priced purchase plan plus policy inputs.
// PendingWindowMinutes is deliberately untyped: anything that is not a
// positive integer falls back to the default window instead of erroring.
type PreflightRequest struct {
	Input                PlanInput `json:"input" binding:"required"`
	Plan                 plan.Plan `json:"plan" binding:"required"`
	PendingWindowMinutes any       `json:"pendingWindowMinutes"`
}

// Preflight computes a payment intent from a purchase plan. Rejections
// (budget cap exceeded, nothing payable) are client errors carrying the
// diagnostic totals and warnings.
func (h *PaymentHandler) Preflight(c *gin.Context) {
	var req PreflightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind preflight request", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid request", err.Error()))
		return
	}

	window := pendingWindowMinutes(req.PendingWindowMinutes)
	if window == 0 {
		window = h.pendingWindow
	}

	cmd := intentUsecases.BuildIntentCommand{
		Buyer:                req.Input.Buyer,
		BudgetCapUsd:         req.Input.BudgetCapUsd,
		Suppliers:            req.Input.Suppliers,
		Skus:                 req.Input.Skus,
		Plan:                 req.Plan,
		PendingWindowMinutes: window,
	}

	result, err := h.buildIntentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		var rej *intent.Rejection
		if errors.As(err, &rej) {
			utils.ErrorResponseWithMeta(c, http.StatusBadRequest, rej.Message, rej)
			return
		}
		h.logger.Errorw("failed to build payment intent", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment intent built", result)
}

// ExecuteRequest is one approved transfer to pay on-chain. Amount accepts a
// decimal string or a JSON number; both must be positive integers in the
// smallest on-chain denomination.
type ExecuteRequest struct {
	Env             string `json:"env"`
	OwnerAddress    string `json:"ownerAddress" binding:"required"`
	SupplierAddress string `json:"supplierAddress" binding:"required"`
	Amount          any    `json:"amount" binding:"required"`
	Ref             string `json:"ref"`
	RestaurantID    string `json:"restaurantId"`
	LocationID      string `json:"locationId"`
}

// Execute submits one approved transfer and waits for one confirmation.
func (h *PaymentHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind execute request", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid request", err.Error()))
		return
	}

	cmd := executionUsecases.ExecuteTransferCommand{
		Env:             req.Env,
		OwnerAddress:    req.OwnerAddress,
		SupplierAddress: req.SupplierAddress,
		Amount:          amountString(req.Amount),
		Ref:             req.Ref,
		RestaurantID:    req.RestaurantID,
		LocationID:      req.LocationID,
	}

	result, err := h.executeUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("payment execution failed",
			"error", err,
			"supplier", req.SupplierAddress,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment confirmed", result)
}

// pendingWindowMinutes coerces the raw JSON value into minutes. Returns 0
// (meaning "use the default") for anything that is not a positive integer.
func pendingWindowMinutes(v any) int {
	switch n := v.(type) {
	case float64:
		if n > 0 && n == math.Trunc(n) {
			return int(n)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

// amountString renders the amount field for parsing. Whole JSON numbers are
// formatted without an exponent; everything else is passed through and left
// to amount validation.
func amountString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}
