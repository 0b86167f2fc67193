package ledger

import (
	"encoding/hex"
	"fmt"
	"regexp"
)

var refPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Ref is a 32-byte identifier passed through to the ledger contract, used
// both for payment references and restaurant identifiers.
type Ref [32]byte

// ZeroRef is the default reference when the caller supplies none.
var ZeroRef Ref

// ParseRef parses a 0x-prefixed 64-char hex string into a Ref.
func ParseRef(s string) (Ref, error) {
	var r Ref
	if !refPattern.MatchString(s) {
		return r, fmt.Errorf("invalid 32-byte reference: %q", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return r, fmt.Errorf("invalid 32-byte reference: %q", s)
	}
	copy(r[:], b)
	return r, nil
}

// Hex returns the 0x-prefixed lowercase hex encoding of the ref.
func (r Ref) Hex() string {
	return "0x" + hex.EncodeToString(r[:])
}

// HashLocationID derives a stable 32-byte restaurant identifier from a
// location id by hashing its UTF-8 bytes with Keccak-256. The same location
// id always yields the same identifier.
func HashLocationID(locationID string) Ref {
	var r Ref
	copy(r[:], Keccak256([]byte(locationID)))
	return r
}
