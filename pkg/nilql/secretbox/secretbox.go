// Package secretbox provides the symmetric authenticated encryption used by
// the Store operation on single-node clusters: XSalsa20-Poly1305 with a
// random 24-byte nonce prepended to the sealed box.
package secretbox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	NonceSize = 24
	Overhead  = NonceSize + secretbox.Overhead
)

var (
	ErrKeySize = errors.New("secretbox: key must be 32 bytes")
	ErrOpen    = errors.New("secretbox: message authentication failed")
)

// Key is a symmetric secret. It is a fixed-size array so that copies never
// alias the caller's buffer.
type Key [KeySize]byte

// NewKey draws a fresh key from crypto/rand.
func NewKey() (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand.Reader, k[:]); err != nil {
		return Key{}, fmt.Errorf("secretbox: sample key: %w", err)
	}
	return k, nil
}

// KeyFromBytes copies b into a Key.
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return Key{}, ErrKeySize
	}
	copy(k[:], b)
	return k, nil
}

// Seal encrypts and authenticates msg, returning nonce || box.
func Seal(key *Key, msg []byte) ([]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("secretbox: sample nonce: %w", err)
	}
	out := make([]byte, NonceSize, NonceSize+len(msg)+secretbox.Overhead)
	copy(out, nonce[:])
	k := (*[KeySize]byte)(key)
	return secretbox.Seal(out, msg, &nonce, k), nil
}

// Open authenticates and decrypts a value produced by Seal. Every failure,
// including truncated input, is reported as ErrOpen.
func Open(key *Key, sealed []byte) ([]byte, error) {
	if len(sealed) < Overhead {
		return nil, ErrOpen
	}
	var nonce [NonceSize]byte
	copy(nonce[:], sealed[:NonceSize])
	k := (*[KeySize]byte)(key)
	msg, ok := secretbox.Open(nil, sealed[NonceSize:], &nonce, k)
	if !ok {
		return nil, ErrOpen
	}
	return msg, nil
}
