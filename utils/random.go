package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MockTransactionHash returns a 0x-prefixed 32 byte hash for simulated payments.
func MockTransactionHash() string {
	h, err := RandomHex(32)
	if err != nil {
		return "0x"
	}
	return "0x" + h
}
