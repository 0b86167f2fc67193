package usecases

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"mise/internal/application/execution/ledgerclient"
	"mise/internal/domain/ledger"
	apperrors "mise/internal/shared/errors"
	"mise/internal/shared/logger"
)

// ExecuteTransferCommand is one approved transfer to submit on-chain.
// Amount is a decimal string in the smallest on-chain denomination. Ref and
// RestaurantID are optional 0x-prefixed 32-byte hex values; when
// RestaurantID is absent, LocationID (if given) is hashed into one.
type ExecuteTransferCommand struct {
	Env             string
	OwnerAddress    string
	SupplierAddress string
	Amount          string
	Ref             string
	RestaurantID    string
	LocationID      string
}

// ExecuteTransferResult is the stable success payload.
type ExecuteTransferResult struct {
	Ok              bool   `json:"ok"`
	Env             string `json:"env"`
	OwnerAddress    string `json:"ownerAddress"`
	SupplierAddress string `json:"supplierAddress"`
	Amount          string `json:"amount"`
	Ref             string `json:"ref"`
	RestaurantID    string `json:"restaurantId"`
	TxHash          string `json:"txHash"`
	BlockNumber     uint64 `json:"blockNumber"`
}

// ExecutionConfig bounds the retry and timeout behavior of a submission.
type ExecutionConfig struct {
	AllowedEnv     string
	SubmitTimeout  time.Duration
	ConfirmTimeout time.Duration
	MaxAttempts    int
	BackoffStep    time.Duration
}

// DefaultExecutionConfig matches the contract: only the testing environment
// is enabled, two submission attempts at most, 15s per submission attempt,
// 60s for the confirmation wait, 300ms linear backoff between retries.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		AllowedEnv:     "testing",
		SubmitTimeout:  15 * time.Second,
		ConfirmTimeout: 60 * time.Second,
		MaxAttempts:    2,
		BackoffStep:    300 * time.Millisecond,
	}
}

func (c ExecutionConfig) normalized() ExecutionConfig {
	def := DefaultExecutionConfig()
	if c.AllowedEnv == "" {
		c.AllowedEnv = def.AllowedEnv
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = def.SubmitTimeout
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = def.ConfirmTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.BackoffStep <= 0 {
		c.BackoffStep = def.BackoffStep
	}
	return c
}

// ExecuteTransferUseCase submits one approved supplier payment on-chain and
// reports a stable result once the transaction has one confirmation.
//
// Every call is independent: no state is kept between calls and no
// idempotency is provided. The caller must not invoke it twice for the same
// intended payment. A confirmation timeout is reported as failure even
// though the submission may have landed; the caller reconciles that by
// checking transaction status out of band. The gateway never resubmits
// after a confirmation timeout.
type ExecuteTransferUseCase struct {
	client ledgerclient.Client
	config ExecutionConfig
	logger logger.Interface
}

func NewExecuteTransferUseCase(client ledgerclient.Client, config ExecutionConfig, log logger.Interface) *ExecuteTransferUseCase {
	return &ExecuteTransferUseCase{
		client: client,
		config: config.normalized(),
		logger: log,
	}
}

// Execute validates the command, submits with bounded retries, and waits for
// one confirmation. Validation failures never reach the network.
func (uc *ExecuteTransferUseCase) Execute(ctx context.Context, cmd ExecuteTransferCommand) (*ExecuteTransferResult, error) {
	env := cmd.Env
	if env == "" {
		env = uc.config.AllowedEnv
	}
	if env != uc.config.AllowedEnv {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("environment %q is not enabled for payments", env),
			fmt.Sprintf("only %q is currently permitted", uc.config.AllowedEnv),
		)
	}

	owner, err := ledger.ParseAddress(cmd.OwnerAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid owner address", err.Error())
	}

	supplier, err := ledger.ParseAddress(cmd.SupplierAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid supplier address", err.Error())
	}

	amount, err := ledger.ParseAmount(cmd.Amount)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid amount", err.Error())
	}

	ref := ledger.ZeroRef
	if cmd.Ref != "" {
		if ref, err = ledger.ParseRef(cmd.Ref); err != nil {
			return nil, apperrors.NewValidationError("invalid ref", err.Error())
		}
	}

	restaurantID := ledger.ZeroRef
	switch {
	case cmd.RestaurantID != "":
		if restaurantID, err = ledger.ParseRef(cmd.RestaurantID); err != nil {
			return nil, apperrors.NewValidationError("invalid restaurantId", err.Error())
		}
	case cmd.LocationID != "":
		restaurantID = ledger.HashLocationID(cmd.LocationID)
	}

	tx, err := uc.submitWithRetry(ctx, owner, supplier, amount, ref, restaurantID)
	if err != nil {
		return nil, err
	}

	// The confirmation wait is never retried: resubmitting after an
	// ambiguous timeout could pay the supplier twice.
	confirmCtx, cancel := context.WithTimeout(ctx, uc.config.ConfirmTimeout)
	defer cancel()

	receipt, err := uc.client.WaitForConfirmation(confirmCtx, tx)
	if err != nil {
		uc.logger.Errorw("confirmation wait failed; transaction may still land",
			"tx_hash", tx.TxHash,
			"error", err,
		)
		return nil, apperrors.NewUpstreamError("payment confirmation failed", ledgerclient.Normalize(err))
	}

	uc.logger.Infow("supplier payment confirmed",
		"tx_hash", receipt.TxHash,
		"block_number", receipt.BlockNumber,
		"supplier", supplier.String(),
		"amount", amount.String(),
	)

	return &ExecuteTransferResult{
		Ok:              true,
		Env:             env,
		OwnerAddress:    owner.String(),
		SupplierAddress: supplier.String(),
		Amount:          amount.String(),
		Ref:             ref.Hex(),
		RestaurantID:    restaurantID.Hex(),
		TxHash:          receipt.TxHash,
		BlockNumber:     receipt.BlockNumber,
	}, nil
}

// submitWithRetry runs the submission call under a per-attempt timeout,
// retrying transient failures with linear backoff. Cancelling an attempt
// cancels the underlying remote call through its context, but the on-chain
// side effect may already have happened: submission is at-least-once from
// the ledger's point of view once any attempt reaches the gateway.
func (uc *ExecuteTransferUseCase) submitWithRetry(
	ctx context.Context,
	owner, supplier ledger.Address,
	amount *big.Int,
	ref, restaurantID ledger.Ref,
) (*ledgerclient.SubmittedTx, error) {
	var lastErr error

	for attempt := 1; attempt <= uc.config.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, uc.config.SubmitTimeout)
		tx, err := uc.client.PayOrderFor(attemptCtx, owner, supplier, amount, ref, restaurantID)
		cancel()
		if err == nil {
			return tx, nil
		}
		lastErr = err

		if !ledgerclient.IsTransient(err) {
			uc.logger.Errorw("payment submission failed",
				"attempt", attempt,
				"error", err,
			)
			return nil, apperrors.NewUpstreamError("payment submission failed", ledgerclient.Normalize(err))
		}
		if attempt == uc.config.MaxAttempts {
			break
		}

		backoff := time.Duration(attempt) * uc.config.BackoffStep
		uc.logger.Warnw("transient ledger error, retrying submission",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, apperrors.NewUpstreamError("payment submission cancelled", ctx.Err().Error())
		case <-time.After(backoff):
		}
	}

	uc.logger.Errorw("payment submission failed after all attempts",
		"attempts", uc.config.MaxAttempts,
		"error", lastErr,
	)
	return nil, apperrors.NewUpstreamError("payment submission failed", ledgerclient.Normalize(lastErr))
}
