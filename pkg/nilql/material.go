package nilql

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/nillion/nilql-go/pkg/nilql/paillier"
	"github.com/nillion/nilql-go/pkg/nilql/secretbox"
)

// SaltSize is the length of the salt held by Match keys.
const SaltSize = 64

// MaterialKind discriminates the variants of Material.
type MaterialKind uint8

const (
	MaterialNone MaterialKind = iota
	MaterialSymmetric
	MaterialPaillierSecret
	MaterialPaillierPublic
	MaterialSalt
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialNone:
		return "none"
	case MaterialSymmetric:
		return "symmetric"
	case MaterialPaillierSecret:
		return "paillier-secret"
	case MaterialPaillierPublic:
		return "paillier-public"
	case MaterialSalt:
		return "salt"
	default:
		return "unknown"
	}
}

// Material is the cryptographic payload of a key. The zero value is the
// None variant. Constructors copy their inputs, so a Material never aliases
// caller memory.
type Material struct {
	kind      MaterialKind
	symmetric secretbox.Key
	salt      []byte
	paillier  *paillier.Paillier
}

// NoMaterial is used by multi-node Store and Sum keys.
func NoMaterial() Material { return Material{} }

// SymmetricMaterial wraps a secretbox key.
func SymmetricMaterial(key secretbox.Key) Material {
	return Material{kind: MaterialSymmetric, symmetric: key}
}

// SaltMaterial wraps a deterministic hashing salt.
func SaltMaterial(salt []byte) (Material, error) {
	if len(salt) != SaltSize {
		return Material{}, fmt.Errorf("%w: salt must be %d bytes", ErrConfiguration, SaltSize)
	}
	return Material{kind: MaterialSalt, salt: append([]byte(nil), salt...)}, nil
}

// PaillierMaterial wraps a Paillier instance as secret or public material
// depending on whether it carries the private key.
func PaillierMaterial(p *paillier.Paillier) (Material, error) {
	if p == nil {
		return Material{}, fmt.Errorf("%w: nil paillier key", ErrConfiguration)
	}
	if p.HasPrivateKey() {
		return Material{kind: MaterialPaillierSecret, paillier: p}, nil
	}
	return Material{kind: MaterialPaillierPublic, paillier: p}, nil
}

func (m Material) Kind() MaterialKind { return m.kind }

// Paillier returns the Paillier instance for the two Paillier variants.
func (m Material) Paillier() (*paillier.Paillier, bool) {
	return m.paillier, m.paillier != nil
}

// expectedMaterial is the table mapping (operation, node count) to the
// only legal material variant for a secret key.
func expectedMaterial(op Operation, nodes int) MaterialKind {
	switch op {
	case Store:
		if nodes == 1 {
			return MaterialSymmetric
		}
		return MaterialNone
	case Match:
		return MaterialSalt
	case Sum:
		if nodes == 1 {
			return MaterialPaillierSecret
		}
		return MaterialNone
	default:
		return MaterialNone
	}
}

func generateMaterial(op Operation, nodes int) (Material, error) {
	switch expectedMaterial(op, nodes) {
	case MaterialSymmetric:
		key, err := secretbox.NewKey()
		if err != nil {
			return Material{}, err
		}
		return SymmetricMaterial(key), nil
	case MaterialSalt:
		salt := make([]byte, SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return Material{}, fmt.Errorf("sample salt: %w", err)
		}
		return Material{kind: MaterialSalt, salt: salt}, nil
	case MaterialPaillierSecret:
		p, err := paillier.Generate()
		if err != nil {
			return Material{}, err
		}
		return Material{kind: MaterialPaillierSecret, paillier: p}, nil
	default:
		return Material{}, nil
	}
}

// Equal compares two materials, using constant-time comparison for secret
// bytes.
func (m Material) Equal(o Material) bool {
	if m.kind != o.kind {
		return false
	}
	switch m.kind {
	case MaterialSymmetric:
		return subtle.ConstantTimeCompare(m.symmetric[:], o.symmetric[:]) == 1
	case MaterialSalt:
		return subtle.ConstantTimeCompare(m.salt, o.salt) == 1
	case MaterialPaillierSecret:
		return m.paillier.N().Cmp(o.paillier.N()) == 0 &&
			m.paillier.G().Cmp(o.paillier.G()) == 0 &&
			m.paillier.Lambda().Cmp(o.paillier.Lambda()) == 0 &&
			m.paillier.Mu().Cmp(o.paillier.Mu()) == 0
	case MaterialPaillierPublic:
		return m.paillier.N().Cmp(o.paillier.N()) == 0 &&
			m.paillier.G().Cmp(o.paillier.G()) == 0
	default:
		return true
	}
}

type paillierSecretJSON struct {
	L string `json:"l"`
	M string `json:"m"`
	N string `json:"n"`
	G string `json:"g"`
}

type paillierPublicJSON struct {
	N string `json:"n"`
	G string `json:"g"`
}

// MarshalJSON renders binary material as base64, Paillier material as
// decimal strings, and no material as an empty object.
func (m Material) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case MaterialNone:
		return []byte("{}"), nil
	case MaterialSymmetric:
		return json.Marshal(base64.StdEncoding.EncodeToString(m.symmetric[:]))
	case MaterialSalt:
		return json.Marshal(base64.StdEncoding.EncodeToString(m.salt))
	case MaterialPaillierSecret:
		return json.Marshal(paillierSecretJSON{
			L: m.paillier.Lambda().String(),
			M: m.paillier.Mu().String(),
			N: m.paillier.N().String(),
			G: m.paillier.G().String(),
		})
	case MaterialPaillierPublic:
		return json.Marshal(paillierPublicJSON{
			N: m.paillier.N().String(),
			G: m.paillier.G().String(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown material kind %d", ErrConfiguration, m.kind)
	}
}

// decodeMaterial rebuilds the typed variant from its JSON form. The
// operation decides what a base64 string means.
func decodeMaterial(raw json.RawMessage, op Operation) (Material, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Material{}, fmt.Errorf("%w: key material is required", ErrConfiguration)
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Material{}, fmt.Errorf("%w: key material is not valid base64", ErrConfiguration)
		}
		defer zeroizeBytes(b)
		switch op {
		case Store:
			key, err := secretbox.KeyFromBytes(b)
			if err != nil {
				return Material{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
			}
			return SymmetricMaterial(key), nil
		case Match:
			return SaltMaterial(b)
		default:
			return Material{}, fmt.Errorf("%w: binary material is not valid for %s keys", ErrConfiguration, op)
		}
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Material{}, fmt.Errorf("%w: unrecognised key material", ErrConfiguration)
	}
	switch len(fields) {
	case 0:
		return NoMaterial(), nil
	case 2, 4:
	default:
		return Material{}, fmt.Errorf("%w: unrecognised key material", ErrConfiguration)
	}

	n, err := parseDecimal(fields, "n")
	if err != nil {
		return Material{}, err
	}
	g, err := parseDecimal(fields, "g")
	if err != nil {
		return Material{}, err
	}
	var p *paillier.Paillier
	if len(fields) == 2 {
		p, err = paillier.FromPublicKey(n, g)
	} else {
		var l, mu *big.Int
		if l, err = parseDecimal(fields, "l"); err != nil {
			return Material{}, err
		}
		if mu, err = parseDecimal(fields, "m"); err != nil {
			return Material{}, err
		}
		p, err = paillier.FromPrivateKey(l, mu, n, g)
	}
	if err != nil {
		return Material{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return PaillierMaterial(p)
}

func parseDecimal(fields map[string]string, name string) (*big.Int, error) {
	s, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: paillier material is missing %q", ErrConfiguration, name)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: paillier material %q is not a decimal integer", ErrConfiguration, name)
	}
	return v, nil
}
