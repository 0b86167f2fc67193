// Package ledgergw implements the ledger client against the HTTP ledger
// gateway that fronts the payment contract.
package ledgergw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"mise/internal/application/execution/ledgerclient"
	"mise/internal/domain/ledger"
	"mise/internal/shared/config"
	"mise/internal/shared/logger"
)

const (
	payOrderPath    = "/v1/orders/pay"
	transactionPath = "/v1/transactions/"
	// Maximum response body size accepted from the gateway (1MB)
	maxResponseSize = 1 << 20
	// Default interval between confirmation polls
	defaultPollInterval = 2 * time.Second
)

// GatewayClient talks to the ledger gateway over HTTP. Call deadlines come
// from the caller's context; the client itself sets none.
type GatewayClient struct {
	endpoint     string
	apiKey       string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       logger.Interface
}

var _ ledgerclient.Client = (*GatewayClient)(nil)

// NewGatewayClient creates a client from config. PollIntervalMS <= 0 falls
// back to the default.
func NewGatewayClient(cfg *config.LedgerConfig, log logger.Interface) *GatewayClient {
	pollInterval := defaultPollInterval
	if cfg.PollIntervalMS > 0 {
		pollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	return &GatewayClient{
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		pollInterval: pollInterval,
		httpClient:   &http.Client{},
		logger:       log,
	}
}

type payOrderRequest struct {
	Owner        string `json:"owner"`
	Supplier     string `json:"supplier"`
	Amount       string `json:"amount"`
	Ref          string `json:"ref"`
	RestaurantID string `json:"restaurantId"`
}

type payOrderResponse struct {
	TxHash string                 `json:"txHash"`
	Error  *ledgerclient.RPCError `json:"error,omitempty"`
}

type transactionResponse struct {
	TxHash        string                 `json:"txHash"`
	Status        string                 `json:"status"`
	BlockNumber   uint64                 `json:"blockNumber"`
	Confirmations int                    `json:"confirmations"`
	Error         *ledgerclient.RPCError `json:"error,omitempty"`
}

// PayOrderFor submits one supplier payment through the gateway and returns
// the transaction handle. Gateway-reported errors come back as *RPCError so
// the retry layer can classify them.
func (c *GatewayClient) PayOrderFor(ctx context.Context, owner, supplier ledger.Address, amount *big.Int, ref, restaurantID ledger.Ref) (*ledgerclient.SubmittedTx, error) {
	payload, err := json.Marshal(payOrderRequest{
		Owner:        owner.String(),
		Supplier:     supplier.String(),
		Amount:       amount.String(),
		Ref:          ref.Hex(),
		RestaurantID: restaurantID.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pay order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+payOrderPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}
	defer resp.Body.Close()

	var body payOrderResponse
	if err := decodeResponse(resp, &body); err != nil {
		return nil, err
	}
	if body.Error != nil {
		return nil, body.Error
	}
	if body.TxHash == "" {
		return nil, &ledgerclient.RPCError{Message: "missing response: gateway returned no transaction hash"}
	}

	c.logger.Debugw("payment submitted", "tx_hash", body.TxHash)
	return &ledgerclient.SubmittedTx{TxHash: body.TxHash}, nil
}

// WaitForConfirmation polls the gateway until the transaction has at least
// one confirmation, reports failure, or ctx expires.
func (c *GatewayClient) WaitForConfirmation(ctx context.Context, tx *ledgerclient.SubmittedTx) (*ledgerclient.Receipt, error) {
	for {
		status, err := c.fetchTransaction(ctx, tx.TxHash)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "failed":
			if status.Error != nil {
				return nil, status.Error
			}
			return nil, &ledgerclient.RPCError{Message: fmt.Sprintf("transaction %s failed on-chain", tx.TxHash)}
		case "confirmed":
			if status.Confirmations >= 1 {
				return &ledgerclient.Receipt{
					TxHash:        status.TxHash,
					BlockNumber:   status.BlockNumber,
					Confirmations: status.Confirmations,
				}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("confirmation wait: %w", ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *GatewayClient) fetchTransaction(ctx context.Context, txHash string) (*transactionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+transactionPath+txHash, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	defer resp.Body.Close()

	var body transactionResponse
	if err := decodeResponse(resp, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// decodeResponse maps gateway HTTP statuses onto the error taxonomy the
// retry layer understands and decodes the JSON body.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return &ledgerclient.RPCError{Message: "HTTP 429 Too Many Requests"}
	case http.StatusServiceUnavailable:
		return &ledgerclient.RPCError{Message: "HTTP 503 Service Unavailable"}
	default:
		// Surface a structured error payload when the gateway sent one.
		var failure struct {
			Error *ledgerclient.RPCError `json:"error"`
		}
		if err := json.Unmarshal(raw, &failure); err == nil && failure.Error != nil {
			return failure.Error
		}
		return &ledgerclient.RPCError{Message: fmt.Sprintf("HTTP %d from ledger gateway", resp.StatusCode)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return nil
}
