package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mise/internal/application/execution/ledgerclient"
	executionUsecases "mise/internal/application/execution/usecases"
	intentUsecases "mise/internal/application/intent/usecases"
	"mise/internal/domain/ledger"
	"mise/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubLedgerClient answers every submission with a fixed transaction and
// every confirmation with a fixed receipt, unless an error is scripted.
type stubLedgerClient struct {
	submitErr  error
	confirmErr error
}

func (s *stubLedgerClient) PayOrderFor(ctx context.Context, owner, supplier ledger.Address, amount *big.Int, ref, restaurantID ledger.Ref) (*ledgerclient.SubmittedTx, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &ledgerclient.SubmittedTx{TxHash: "0xdeadbeef"}, nil
}

func (s *stubLedgerClient) WaitForConfirmation(ctx context.Context, tx *ledgerclient.SubmittedTx) (*ledgerclient.Receipt, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &ledgerclient.Receipt{TxHash: tx.TxHash, BlockNumber: 99, Confirmations: 1}, nil
}

func newTestHandler(client ledgerclient.Client) *PaymentHandler {
	return newTestHandlerWithWindow(client, 0)
}

func newTestHandlerWithWindow(client ledgerclient.Client, pendingWindowMinutes int) *PaymentHandler {
	log := logger.NewLogger()
	buildIntentUC := intentUsecases.NewBuildIntentUseCaseWithDeps(
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		func() string { return "intent-fixed" },
		log,
	)
	cfg := executionUsecases.DefaultExecutionConfig()
	cfg.BackoffStep = time.Millisecond
	executeUC := executionUsecases.NewExecuteTransferUseCase(client, cfg, log)
	return NewPaymentHandler(buildIntentUC, executeUC, pendingWindowMinutes, log)
}

func newTestRouter(h *PaymentHandler) *gin.Engine {
	engine := gin.New()
	engine.POST("/api/payments/preflight", h.Preflight)
	engine.POST("/api/payments/execute", h.Execute)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

const preflightBody = `{
	"input": {
		"locationId": "downtown-01",
		"buyer": "ops@example.com",
		"budgetCapUsd": 100,
		"suppliers": [{"supplierId": "sup-greens", "name": "Green Fields", "payoutAddress": "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", "leadTimeDays": 2}],
		"skus": [{"sku": "romaine-case", "name": "Romaine case", "unit": "case", "shelfLifeDays": 7, "supplierId": "sup-greens", "unitCostUsd": 18.5}]
	},
	"plan": {
		"generatedAt": "2025-06-01T09:00:00Z",
		"orders": [{"supplierId": "sup-greens", "orderDate": "2025-06-02", "items": [{"sku": "romaine-case", "orderUnits": 2}]}]
	}
}`

func TestPreflight_Success(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	w := postJSON(t, engine, "/api/payments/preflight", preflightBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			IntentID     string `json:"intentId"`
			PendingUntil string `json:"pendingUntil"`
			Transfers    []struct {
				SupplierID string  `json:"supplierId"`
				AmountUsd  float64 `json:"amountUsd"`
			} `json:"transfers"`
			Validation struct {
				TotalUsd float64 `json:"totalUsd"`
			} `json:"validation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "intent-fixed", resp.Data.IntentID)
	require.Len(t, resp.Data.Transfers, 1)
	assert.Equal(t, "sup-greens", resp.Data.Transfers[0].SupplierID)
	assert.InDelta(t, 37.0, resp.Data.Transfers[0].AmountUsd, 1e-9)
	assert.InDelta(t, 37.0, resp.Data.Validation.TotalUsd, 1e-9)
	assert.Equal(t, "2025-06-01T12:15:00Z", resp.Data.PendingUntil, "default pending window is 15 minutes")
}

func TestPreflight_BudgetRejectionCarriesDiagnostics(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(preflightBody), &payload))
	payload["input"].(map[string]any)["budgetCapUsd"] = 36.99
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/payments/preflight", string(body))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
			Meta    struct {
				BudgetCapUsd float64 `json:"budgetCapUsd"`
				TotalUsd     float64 `json:"totalUsd"`
			} `json:"meta"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.Success)
	assert.Equal(t, "budget cap exceeded", resp.Error.Message)
	assert.InDelta(t, 36.99, resp.Error.Meta.BudgetCapUsd, 1e-9)
	assert.InDelta(t, 37.0, resp.Error.Meta.TotalUsd, 1e-9)
}

func TestPreflight_NonNumericPendingWindowFallsBack(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(preflightBody), &payload))
	payload["pendingWindowMinutes"] = "soon"
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/payments/preflight", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			PendingUntil string `json:"pendingUntil"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-01T12:15:00Z", resp.Data.PendingUntil)
}

func TestPreflight_ConfiguredWindowUsedWhenRequestHasNone(t *testing.T) {
	engine := newTestRouter(newTestHandlerWithWindow(&stubLedgerClient{}, 30))

	w := postJSON(t, engine, "/api/payments/preflight", preflightBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			PendingUntil string `json:"pendingUntil"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-01T12:30:00Z", resp.Data.PendingUntil, "configured window applies when the request carries none")
}

func TestPreflight_RequestWindowOverridesConfiguredOne(t *testing.T) {
	engine := newTestRouter(newTestHandlerWithWindow(&stubLedgerClient{}, 30))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(preflightBody), &payload))
	payload["pendingWindowMinutes"] = 5
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/payments/preflight", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			PendingUntil string `json:"pendingUntil"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-01T12:05:00Z", resp.Data.PendingUntil)
}

func TestPreflight_MalformedJSONRejected(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	w := postJSON(t, engine, "/api/payments/preflight", `{"input": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const executeBody = `{
	"env": "testing",
	"ownerAddress": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"supplierAddress": "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359",
	"amount": "1250000",
	"locationId": "downtown-01"
}`

func TestExecute_Success(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	w := postJSON(t, engine, "/api/payments/execute", executeBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Ok          bool   `json:"ok"`
			TxHash      string `json:"txHash"`
			BlockNumber uint64 `json:"blockNumber"`
			Amount      string `json:"amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Ok)
	assert.Equal(t, "0xdeadbeef", resp.Data.TxHash)
	assert.Equal(t, uint64(99), resp.Data.BlockNumber)
	assert.Equal(t, "1250000", resp.Data.Amount)
}

func TestExecute_NumericAmountAccepted(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(executeBody), &payload))
	payload["amount"] = 1250000
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/payments/execute", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestExecute_ProductionEnvRejected(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(executeBody), &payload))
	payload["env"] = "production"
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := postJSON(t, engine, "/api/payments/execute", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
}

func TestExecute_UpstreamFailureSurfacesNormalizedMessage(t *testing.T) {
	client := &stubLedgerClient{
		submitErr: &ledgerclient.RPCError{ShortMessage: "execution reverted", Reason: "insufficient allowance"},
	}
	engine := newTestRouter(newTestHandler(client))

	w := postJSON(t, engine, "/api/payments/execute", executeBody)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Error struct {
			Type    string `json:"type"`
			Details string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "upstream_error", resp.Error.Type)
	assert.Equal(t, "execution reverted", resp.Error.Details)
}

func TestExecute_MissingRequiredFieldsRejected(t *testing.T) {
	engine := newTestRouter(newTestHandler(&stubLedgerClient{}))

	w := postJSON(t, engine, "/api/payments/execute", `{"env": "testing"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
