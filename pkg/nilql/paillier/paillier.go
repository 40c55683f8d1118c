package paillier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ModulusBits is the size of the modulus n produced by Generate.
const ModulusBits = 2048

var (
	ErrNoPrivateKey   = errors.New("paillier: private key required")
	ErrInvalidKey     = errors.New("paillier: invalid key")
	ErrInvalidCipher  = errors.New("paillier: invalid ciphertext")
	ErrNilPaillier    = errors.New("paillier: nil instance")
	errInvalidOperand = errors.New("paillier: nil operand")
)

var one = big.NewInt(1)

// Paillier holds a public key (n, g) and optionally the private values
// (lambda, mu). Instances are immutable after construction and safe for
// concurrent use.
type Paillier struct {
	n        *big.Int
	g        *big.Int
	nSquared *big.Int

	lambda *big.Int
	mu     *big.Int
}

// Generate creates a new keypair with a 2048-bit modulus, using g = n + 1.
func Generate() (*Paillier, error) {
	return GenerateFrom(rand.Reader, ModulusBits)
}

// GenerateFrom creates a keypair with the given modulus size drawing
// randomness from r. Sizes below 2048 bits are only suitable for tests.
func GenerateFrom(r io.Reader, bits int) (*Paillier, error) {
	if bits < 16 || bits%2 != 0 {
		return nil, fmt.Errorf("%w: modulus size %d", ErrInvalidKey, bits)
	}
	for {
		p, err := rand.Prime(r, bits/2)
		if err != nil {
			return nil, fmt.Errorf("paillier: generate prime: %w", err)
		}
		q, err := rand.Prime(r, bits/2)
		if err != nil {
			return nil, fmt.Errorf("paillier: generate prime: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}
		pm1 := new(big.Int).Sub(p, one)
		qm1 := new(big.Int).Sub(q, one)
		phi := new(big.Int).Mul(pm1, qm1)
		if new(big.Int).GCD(nil, nil, n, phi).Cmp(one) != 0 {
			continue
		}
		gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
		lambda := new(big.Int).Div(phi, gcd)
		g := new(big.Int).Add(n, one)
		return FromPrivateKey(lambda, nil, n, g)
	}
}

// FromPublicKey creates an instance that can encrypt and combine ciphertexts
// but cannot decrypt.
func FromPublicKey(n, g *big.Int) (*Paillier, error) {
	if n == nil || g == nil {
		return nil, fmt.Errorf("%w: missing public values", ErrInvalidKey)
	}
	if n.Cmp(one) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than one", ErrInvalidKey)
	}
	nSquared := new(big.Int).Mul(n, n)
	if g.Sign() <= 0 || g.Cmp(nSquared) >= 0 {
		return nil, fmt.Errorf("%w: generator outside the ciphertext group", ErrInvalidKey)
	}
	return &Paillier{
		n:        new(big.Int).Set(n),
		g:        new(big.Int).Set(g),
		nSquared: nSquared,
	}, nil
}

// FromPrivateKey creates a full instance. When mu is nil it is derived from
// lambda; otherwise the supplied mu must match the key.
func FromPrivateKey(lambda, mu, n, g *big.Int) (*Paillier, error) {
	pub, err := FromPublicKey(n, g)
	if err != nil {
		return nil, err
	}
	if lambda == nil || lambda.Sign() <= 0 {
		return nil, fmt.Errorf("%w: lambda must be positive", ErrInvalidKey)
	}
	u := new(big.Int).Exp(pub.g, lambda, pub.nSquared)
	derived := new(big.Int).ModInverse(pub.l(u), pub.n)
	if derived == nil {
		return nil, fmt.Errorf("%w: lambda is not invertible for this key", ErrInvalidKey)
	}
	if mu != nil && mu.Cmp(derived) != 0 {
		return nil, fmt.Errorf("%w: mu does not match lambda", ErrInvalidKey)
	}
	pub.lambda = new(big.Int).Set(lambda)
	pub.mu = derived
	return pub, nil
}

// l computes L(u) = (u - 1) / n.
func (p *Paillier) l(u *big.Int) *big.Int {
	out := new(big.Int).Sub(u, one)
	return out.Div(out, p.n)
}

// HasPrivateKey returns true if this instance can decrypt.
func (p *Paillier) HasPrivateKey() bool {
	return p != nil && p.lambda != nil
}

// N returns a copy of the modulus.
func (p *Paillier) N() *big.Int { return new(big.Int).Set(p.n) }

// G returns a copy of the generator.
func (p *Paillier) G() *big.Int { return new(big.Int).Set(p.g) }

// Lambda returns a copy of the private exponent, or nil for a public key.
func (p *Paillier) Lambda() *big.Int {
	if p.lambda == nil {
		return nil
	}
	return new(big.Int).Set(p.lambda)
}

// Mu returns a copy of the private multiplier, or nil for a public key.
func (p *Paillier) Mu() *big.Int {
	if p.mu == nil {
		return nil
	}
	return new(big.Int).Set(p.mu)
}

// Public returns an instance holding only the public values.
func (p *Paillier) Public() *Paillier {
	return &Paillier{n: p.N(), g: p.G(), nSquared: new(big.Int).Set(p.nSquared)}
}

// Encrypt encrypts m, reduced modulo n, under fresh randomness.
func (p *Paillier) Encrypt(m *big.Int) (*big.Int, error) {
	if p == nil {
		return nil, ErrNilPaillier
	}
	if m == nil {
		return nil, errInvalidOperand
	}
	r, err := p.randomUnit()
	if err != nil {
		return nil, err
	}
	mm := new(big.Int).Mod(m, p.n)
	gm := new(big.Int).Exp(p.g, mm, p.nSquared)
	rn := new(big.Int).Exp(r, p.n, p.nSquared)
	gm.Mul(gm, rn)
	return gm.Mod(gm, p.nSquared), nil
}

func (p *Paillier) randomUnit() (*big.Int, error) {
	for {
		r, err := rand.Int(rand.Reader, p.n)
		if err != nil {
			return nil, fmt.Errorf("paillier: sample randomness: %w", err)
		}
		if r.Sign() == 0 {
			continue
		}
		if new(big.Int).GCD(nil, nil, r, p.n).Cmp(one) == 0 {
			return r, nil
		}
	}
}

// Decrypt recovers the plaintext in [0, n).
func (p *Paillier) Decrypt(c *big.Int) (*big.Int, error) {
	if p == nil {
		return nil, ErrNilPaillier
	}
	if !p.HasPrivateKey() {
		return nil, ErrNoPrivateKey
	}
	if err := p.VerifyCipher(c); err != nil {
		return nil, err
	}
	u := new(big.Int).Exp(c, p.lambda, p.nSquared)
	m := p.l(u)
	m.Mul(m, p.mu)
	return m.Mod(m, p.n), nil
}

// AddCiphers homomorphically adds two ciphertexts.
func (p *Paillier) AddCiphers(c1, c2 *big.Int) (*big.Int, error) {
	if p == nil {
		return nil, ErrNilPaillier
	}
	if err := p.VerifyCipher(c1); err != nil {
		return nil, err
	}
	if err := p.VerifyCipher(c2); err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(c1, c2)
	return out.Mod(out, p.nSquared), nil
}

// MulScalar homomorphically multiplies the plaintext under c by k (mod n).
func (p *Paillier) MulScalar(c, k *big.Int) (*big.Int, error) {
	if p == nil {
		return nil, ErrNilPaillier
	}
	if k == nil {
		return nil, errInvalidOperand
	}
	if err := p.VerifyCipher(c); err != nil {
		return nil, err
	}
	kk := new(big.Int).Mod(k, p.n)
	return new(big.Int).Exp(c, kk, p.nSquared), nil
}

// VerifyCipher checks that c is a unit of Z_{n^2}.
func (p *Paillier) VerifyCipher(c *big.Int) error {
	if p == nil {
		return ErrNilPaillier
	}
	if c == nil || c.Sign() <= 0 || c.Cmp(p.nSquared) >= 0 {
		return ErrInvalidCipher
	}
	if new(big.Int).GCD(nil, nil, c, p.n).Cmp(one) != 0 {
		return ErrInvalidCipher
	}
	return nil
}
