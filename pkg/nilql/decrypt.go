package nilql

import (
	"encoding/base64"
	"math/big"

	"github.com/nillion/nilql-go/pkg/nilql/codec"
	"github.com/nillion/nilql-go/pkg/nilql/secretbox"
)

const shareModulus = 1 << 32

// Decrypt recovers the plaintext protected by c. The ciphertext's shape is
// checked against the key's cluster first and reported as ErrTypeMismatch;
// every later failure is reported as ErrInvalidCiphertext. Match keys
// cannot decrypt.
func Decrypt(sk *SecretKey, c Ciphertext) (Plaintext, error) {
	const op = "Decrypt"
	if sk == nil {
		return Plaintext{}, errorf(op, ErrConfiguration, "nil key")
	}
	if err := checkShape(sk, c); err != nil {
		return Plaintext{}, &Error{Op: op, Err: err}
	}

	nodes := sk.NodeCount()
	switch {
	case sk.operation == Store && nodes == 1:
		return decryptStoreSingle(sk.material, c.scalar)
	case sk.operation == Store:
		return decryptStoreShares(c.shares)
	case sk.operation == Sum && nodes == 1:
		return decryptSumSingle(sk.material, c.scalar)
	case sk.operation == Sum:
		return decryptSumShares(c.shares)
	default:
		return Plaintext{}, invalidCiphertext(op)
	}
}

func checkShape(sk *SecretKey, c Ciphertext) error {
	if sk.NodeCount() == 1 {
		if c.multi {
			return wrapKind(ErrTypeMismatch, "secret key requires a valid ciphertext from a single-node cluster")
		}
		return nil
	}
	if !c.multi || !c.homogeneous() {
		return wrapKind(ErrTypeMismatch, "secret key requires a valid ciphertext from a multi-node cluster")
	}
	if len(c.shares) != sk.NodeCount() {
		return &kindError{kind: ErrTypeMismatch, cause: ErrClusterSize}
	}
	return nil
}

// kindError carries two sentinels so errors.Is matches both.
type kindError struct {
	kind  error
	cause error
	msg   string
}

func wrapKind(kind error, msg string) error { return &kindError{kind: kind, msg: msg} }

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.kind.Error() + ": " + e.cause.Error()
	}
	return e.kind.Error() + ": " + e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func decryptStoreSingle(m Material, s string) (Plaintext, error) {
	const op = "Decrypt"
	if m.kind != MaterialSymmetric {
		return Plaintext{}, invalidCiphertext(op)
	}
	sealed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Plaintext{}, invalidCiphertext(op)
	}
	buf, err := secretbox.Open(&m.symmetric, sealed)
	if err != nil {
		return Plaintext{}, invalidCiphertext(op)
	}
	defer zeroizeBytes(buf)
	p, err := codec.Decode(buf)
	if err != nil {
		return Plaintext{}, invalidCiphertext(op)
	}
	return p, nil
}

func decryptStoreShares(shares []Share) (Plaintext, error) {
	const op = "Decrypt"
	var buf []byte
	defer func() { zeroizeBytes(buf) }()
	for i, s := range shares {
		if !s.IsString() {
			return Plaintext{}, invalidCiphertext(op)
		}
		b, err := base64.StdEncoding.DecodeString(s.s)
		if err != nil {
			return Plaintext{}, invalidCiphertext(op)
		}
		if i == 0 {
			buf = b
			continue
		}
		if len(b) != len(buf) {
			return Plaintext{}, invalidCiphertext(op)
		}
		xorInto(buf, b)
	}
	p, err := codec.Decode(buf)
	if err != nil {
		return Plaintext{}, invalidCiphertext(op)
	}
	return p, nil
}

func decryptSumSingle(m Material, s string) (Plaintext, error) {
	const op = "Decrypt"
	p, ok := m.Paillier()
	if !ok || !p.HasPrivateKey() {
		return Plaintext{}, invalidCiphertext(op)
	}
	c, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Plaintext{}, invalidCiphertext(op)
	}
	v, err := p.Decrypt(c)
	if err != nil {
		return Plaintext{}, invalidCiphertext(op)
	}
	// Plaintexts above n/2 encode negative values.
	half := new(big.Int).Rsh(p.N(), 1)
	if v.Cmp(half) > 0 {
		v.Sub(v, p.N())
	}
	if !v.IsInt64() || !codec.InIntegerRange(v.Int64()) {
		return Plaintext{}, invalidCiphertext(op)
	}
	return codec.Integer(v.Int64()), nil
}

func decryptSumShares(shares []Share) (Plaintext, error) {
	var total uint32
	for _, s := range shares {
		if !s.IsInteger() {
			return Plaintext{}, invalidCiphertext("Decrypt")
		}
		total += uint32(s.n)
	}
	v := int64(total)
	if v > codec.IntegerMax {
		v -= shareModulus
	}
	return codec.Integer(v), nil
}
