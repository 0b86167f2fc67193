// Package ledgerclient defines the contract the execution gateway uses to
// talk to the on-chain ledger, plus the error classification applied when a
// remote call fails.
package ledgerclient

import (
	"context"
	"math/big"

	"mise/internal/domain/ledger"
)

// SubmittedTx is the handle returned by a successful submission, before any
// confirmation has been observed.
type SubmittedTx struct {
	TxHash string
}

// Receipt reports an on-chain transaction that reached the required
// confirmation depth (one block).
type Receipt struct {
	TxHash        string
	BlockNumber   uint64
	Confirmations int
}

// Client is the ledger write interface. PayOrderFor submits one supplier
// payment; WaitForConfirmation blocks until the submitted transaction has at
// least one confirmation or ctx expires.
type Client interface {
	PayOrderFor(ctx context.Context, owner, supplier ledger.Address, amount *big.Int, ref, restaurantID ledger.Ref) (*SubmittedTx, error)
	WaitForConfirmation(ctx context.Context, tx *SubmittedTx) (*Receipt, error)
}
