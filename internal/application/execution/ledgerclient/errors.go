package ledgerclient

import (
	"strings"
)

// RPCError carries the structured error fields a ledger gateway returns.
// ShortMessage is the most specific human-readable field, Reason the revert
// reason when the contract rejected the call, Message the generic fallback.
type RPCError struct {
	ShortMessage string `json:"shortMessage,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (e *RPCError) Error() string {
	return Normalize(e)
}

// Normalize extracts the most specific available message from an error:
// short message first, then reason, then the generic message.
func Normalize(err error) string {
	if err == nil {
		return ""
	}
	if rpcErr, ok := err.(*RPCError); ok {
		switch {
		case rpcErr.ShortMessage != "":
			return rpcErr.ShortMessage
		case rpcErr.Reason != "":
			return rpcErr.Reason
		case rpcErr.Message != "":
			return rpcErr.Message
		default:
			return "ledger call failed"
		}
	}
	return err.Error()
}

// transientSignatures is the authoritative set of error signatures that are
// safe to retry: a missing RPC response, a timeout, a reset connection, or
// rate limiting / temporary unavailability from the gateway.
var transientSignatures = []string{
	"missing response",
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection reset",
	"econnreset",
	"429",
	"too many requests",
	"503",
	"service unavailable",
}

// IsTransient reports whether the error matches a known-transient signature.
// Anything unmatched is fatal and must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
