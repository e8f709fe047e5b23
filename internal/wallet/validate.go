package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const signatureLength = 65 // r || s || v

// ValidateAddress checks that s is a well-formed 0x-prefixed EVM address
// and returns its checksummed form.
func ValidateAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid address: %s", s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// ValidateSignature checks that s decodes to a 65-byte r||s||v signature.
// It verifies shape only; recovery happens venue-side.
func ValidateSignature(s string) ([]byte, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != signatureLength {
		return nil, fmt.Errorf("invalid signature length: got %d bytes, want %d", len(raw), signatureLength)
	}
	return raw, nil
}
