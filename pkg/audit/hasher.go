package audit

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// KeyedHasher pseudonymizes identifying values such as client IPs. The same
// input always maps to the same digest under one key, so events from one
// client can still be correlated without storing the address.
type KeyedHasher struct {
	key []byte
}

// NewKeyedHasher returns a hasher for key, which must be 16 to 64 bytes.
func NewKeyedHasher(key []byte) (*KeyedHasher, error) {
	if len(key) < 16 || len(key) > blake2b.Size {
		return nil, fmt.Errorf("%w: key must be 16-%d bytes, got %d", ErrInvalidHasherKey, blake2b.Size, len(key))
	}
	return &KeyedHasher{key: append([]byte(nil), key...)}, nil
}

// Hash returns the hex-encoded, 128-bit keyed BLAKE2b digest of v.
func (h *KeyedHasher) Hash(v string) string {
	mac, err := blake2b.New(16, h.key)
	if err != nil {
		// Key length is checked in the constructor.
		panic(err)
	}
	mac.Write([]byte(v))
	return hex.EncodeToString(mac.Sum(nil))
}
