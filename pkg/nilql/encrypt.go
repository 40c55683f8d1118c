package nilql

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/nillion/nilql-go/pkg/nilql/codec"
	"github.com/nillion/nilql-go/pkg/nilql/secretbox"
)

// Encrypt protects p under key. The scheme is chosen by the key's operation
// and node count; see the package documentation for the table.
func Encrypt(key Key, p Plaintext) (Ciphertext, error) {
	const op = "Encrypt"
	if isNilKey(key) {
		return Ciphertext{}, errorf(op, ErrConfiguration, "nil key")
	}

	operation := key.Operation()
	if operation == Sum {
		if _, ok := p.Int(); !ok {
			return Ciphertext{}, errorf(op, ErrRange, "numeric plaintext must be a valid 32-bit signed integer")
		}
	}
	buf, err := codec.Encode(p)
	if err != nil {
		return Ciphertext{}, wrap(op, err)
	}
	defer zeroizeBytes(buf)

	nodes := key.NodeCount()
	material := key.keyMaterial()

	var ct Ciphertext
	switch {
	case operation == Store && nodes == 1:
		ct, err = encryptStoreSingle(material, buf)
	case operation == Store:
		ct, err = encryptStoreShares(nodes, buf)
	case operation == Match:
		ct, err = encryptMatch(material, nodes, buf)
	case operation == Sum && nodes == 1:
		v, _ := p.Int()
		ct, err = encryptSumSingle(material, v)
	case operation == Sum:
		v, _ := p.Int()
		ct, err = encryptSumShares(nodes, v)
	default:
		err = fmt.Errorf("%w: unsupported operation %s", ErrConfiguration, operation)
	}
	if err != nil {
		return Ciphertext{}, wrap(op, err)
	}
	return ct, nil
}

func encryptStoreSingle(m Material, buf []byte) (Ciphertext, error) {
	if m.kind != MaterialSymmetric {
		return Ciphertext{}, fmt.Errorf("%w: store key requires symmetric material", ErrConfiguration)
	}
	sealed, err := secretbox.Seal(&m.symmetric, buf)
	if err != nil {
		return Ciphertext{}, err
	}
	return ScalarCiphertext(base64.StdEncoding.EncodeToString(sealed)), nil
}

// encryptStoreShares splits buf into n XOR shares: n-1 uniform masks and a
// final share equal to buf XOR all masks.
func encryptStoreShares(n int, buf []byte) (Ciphertext, error) {
	shares := make([]Share, n)
	aggregate := make([]byte, len(buf))
	defer zeroizeBytes(aggregate)

	mask := make([]byte, len(buf))
	defer zeroizeBytes(mask)
	for i := 0; i < n-1; i++ {
		if _, err := io.ReadFull(rand.Reader, mask); err != nil {
			return Ciphertext{}, fmt.Errorf("sample mask: %w", err)
		}
		xorInto(aggregate, mask)
		shares[i] = StringShare(base64.StdEncoding.EncodeToString(mask))
	}
	xorInto(aggregate, buf)
	shares[n-1] = StringShare(base64.StdEncoding.EncodeToString(aggregate))
	return Ciphertext{multi: true, shares: shares}, nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// encryptMatch hashes salt || buf. Every node receives the same digest.
func encryptMatch(m Material, n int, buf []byte) (Ciphertext, error) {
	if m.kind != MaterialSalt {
		return Ciphertext{}, fmt.Errorf("%w: match key requires salt material", ErrConfiguration)
	}
	h := sha512.New()
	h.Write(m.salt)
	h.Write(buf)
	digest := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if n == 1 {
		return ScalarCiphertext(digest), nil
	}
	shares := make([]Share, n)
	for i := range shares {
		shares[i] = StringShare(digest)
	}
	return Ciphertext{multi: true, shares: shares}, nil
}

func encryptSumSingle(m Material, v int64) (Ciphertext, error) {
	p, ok := m.Paillier()
	if !ok {
		return Ciphertext{}, fmt.Errorf("%w: sum key requires paillier material", ErrConfiguration)
	}
	c, err := p.Encrypt(big.NewInt(v))
	if err != nil {
		return Ciphertext{}, err
	}
	return ScalarCiphertext(c.Text(16)), nil
}

// encryptSumShares produces n additive shares of v modulo 2^32. uint32
// arithmetic performs the reduction.
func encryptSumShares(n int, v int64) (Ciphertext, error) {
	shares := make([]Share, n)
	var total uint32
	var raw [4]byte
	for i := 0; i < n-1; i++ {
		if _, err := io.ReadFull(rand.Reader, raw[:]); err != nil {
			return Ciphertext{}, fmt.Errorf("sample share: %w", err)
		}
		s := binary.LittleEndian.Uint32(raw[:])
		total += s
		shares[i] = IntegerShare(int64(s))
	}
	shares[n-1] = IntegerShare(int64(uint32(v) - total))
	return Ciphertext{multi: true, shares: shares}, nil
}
