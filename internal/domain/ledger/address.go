// Package ledger holds the value objects used when talking to the on-chain
// ledger: checksummed addresses, 32-byte references, and raw token amounts.
package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Address is an on-chain account address in EIP-55 checksummed form.
type Address string

func (a Address) String() string {
	return string(a)
}

// ParseAddress validates s as a 20-byte hex address and returns it in
// checksummed form. All-lowercase and all-uppercase inputs carry no checksum
// and are accepted as-is; mixed-case inputs must match the EIP-55 checksum
// exactly.
func ParseAddress(s string) (Address, error) {
	if !addressPattern.MatchString(s) {
		return "", fmt.Errorf("invalid address format: %q", s)
	}

	hexPart := s[2:]
	checksummed := checksumHex(strings.ToLower(hexPart))

	mixedCase := hexPart != strings.ToLower(hexPart) && hexPart != strings.ToUpper(hexPart)
	if mixedCase && hexPart != checksummed {
		return "", fmt.Errorf("address checksum mismatch: %q", s)
	}

	return Address("0x" + checksummed), nil
}

// checksumHex applies the EIP-55 casing rule to a lowercase 40-char hex
// string: a letter is uppercased when the matching nibble of
// keccak256(lowercase address) is >= 8.
func checksumHex(lower string) string {
	hash := Keccak256([]byte(lower))

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2] >> 4
		if i%2 == 1 {
			nibble = hash[i/2] & 0x0f
		}
		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

// Keccak256 returns the legacy Keccak-256 digest of data. This is the hash
// the ledger ecosystem uses, not the NIST SHA3-256 variant.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
