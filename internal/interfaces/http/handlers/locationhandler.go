package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mise/internal/domain/catalog"
	"mise/internal/domain/location"
	"mise/internal/infrastructure/store"
	apperrors "mise/internal/shared/errors"
	"mise/internal/shared/logger"
	"mise/internal/shared/utils"
)

// LocationHandler is the thin passthrough over the per-location planning
// state store. It owns no logic beyond timestamps and status mapping.
type LocationHandler struct {
	store  store.Store
	logger logger.Interface
}

func NewLocationHandler(s store.Store, logger logger.Interface) *LocationHandler {
	return &LocationHandler{store: s, logger: logger}
}

// GetState returns the full planning state for one location.
func (h *LocationHandler) GetState(c *gin.Context) {
	locationID := c.Param("id")

	state, err := h.store.Get(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.ErrorResponseWithError(c, apperrors.NewNotFoundError("location not found"))
			return
		}
		h.logger.Errorw("failed to read location state", "location_id", locationID, "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewInternalError("failed to read location state"))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", state)
}

// LocationStateRequest is the full planning state for one location. The
// catalog halves are mandatory; inventory may be omitted.
type LocationStateRequest struct {
	Suppliers []catalog.Supplier `json:"suppliers" validate:"required"`
	Skus      []catalog.Sku      `json:"skus" validate:"required"`
	Inventory map[string]float64 `json:"inventory"`
}

// PutState replaces the full planning state for one location.
func (h *LocationHandler) PutState(c *gin.Context) {
	locationID := c.Param("id")

	var req LocationStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("invalid request", err.Error()))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	state := location.State{
		Suppliers: req.Suppliers,
		Skus:      req.Skus,
		Inventory: req.Inventory,
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.store.Set(c.Request.Context(), locationID, state); err != nil {
		h.logger.Errorw("failed to write location state", "location_id", locationID, "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewInternalError("failed to write location state"))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "location state updated", state)
}
