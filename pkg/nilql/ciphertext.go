package nilql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/nillion/nilql-go/pkg/nilql/document"
)

type shareKind uint8

const (
	shareString shareKind = iota
	shareInteger
)

// Share is one node's component of a multi-node ciphertext: a base64 string
// for Store and Match, an unsigned integer for Sum.
type Share struct {
	kind shareKind
	s    string
	n    int64
}

func StringShare(s string) Share { return Share{kind: shareString, s: s} }
func IntegerShare(n int64) Share { return Share{kind: shareInteger, n: n} }
func (s Share) IsString() bool { return s.kind == shareString }
func (s Share) IsInteger() bool { return s.kind == shareInteger }
func (s Share) Str() string { return s.s }
func (s Share) Int() int64 { return s.n }
func (s Share) Equal(o Share) bool { return s == o }

func (s Share) document() document.Document {
	if s.kind == shareInteger {
		return document.Int(s.n)
	}
	return document.String(s.s)
}

// Ciphertext is either a single scalar string (single-node keys) or a
// sequence of shares, one per node, in node order.
type Ciphertext struct {
	multi  bool
	scalar string
	shares []Share
}

// ScalarCiphertext wraps a single-node ciphertext.
func ScalarCiphertext(s string) Ciphertext { return Ciphertext{scalar: s} }

// SharesCiphertext wraps a multi-node ciphertext.
func SharesCiphertext(shares ...Share) Ciphertext {
	return Ciphertext{multi: true, shares: slices.Clone(shares)}
}

func (c Ciphertext) IsScalar() bool { return !c.multi }

// Scalar returns the single-node form and whether c holds it.
func (c Ciphertext) Scalar() (string, bool) { return c.scalar, !c.multi }

// Shares returns a copy of the shares, or nil for a scalar ciphertext.
func (c Ciphertext) Shares() []Share {
	if !c.multi {
		return nil
	}
	return slices.Clone(c.shares)
}

// Len returns 1 for a scalar and the share count otherwise.
func (c Ciphertext) Len() int {
	if !c.multi {
		return 1
	}
	return len(c.shares)
}

// Equal reports whether two ciphertexts are identical. Match ciphertexts are
// compared this way instead of being decrypted.
func (c Ciphertext) Equal(o Ciphertext) bool {
	if c.multi != o.multi {
		return false
	}
	if !c.multi {
		return c.scalar == o.scalar
	}
	return slices.Equal(c.shares, o.shares)
}

// homogeneous reports whether every share has the same kind.
func (c Ciphertext) homogeneous() bool {
	for _, s := range c.shares {
		if s.kind != c.shares[0].kind {
			return false
		}
	}
	return true
}

// Document returns the wire form of c as a document value.
func (c Ciphertext) Document() document.Document {
	if !c.multi {
		return document.String(c.scalar)
	}
	out := make(document.List, len(c.shares))
	for i, s := range c.shares {
		out[i] = s.document()
	}
	return out
}

// AllotmentOf wraps c in an {"$allot": ...} marker for use with Allot.
func AllotmentOf(c Ciphertext) document.Map {
	return document.Allotment(c.Document())
}

// CiphertextFromDocument parses the wire form produced by Document.
func CiphertextFromDocument(d document.Document) (Ciphertext, error) {
	switch v := d.(type) {
	case document.String:
		return ScalarCiphertext(string(v)), nil
	case document.List:
		shares := make([]Share, len(v))
		for i, e := range v {
			switch x := e.(type) {
			case document.String:
				shares[i] = StringShare(string(x))
			case document.Int:
				shares[i] = IntegerShare(int64(x))
			default:
				return Ciphertext{}, errorf("CiphertextFromDocument", ErrTypeMismatch, "share %d is a %s", i, document.KindOf(e))
			}
		}
		return Ciphertext{multi: true, shares: shares}, nil
	default:
		return Ciphertext{}, errorf("CiphertextFromDocument", ErrTypeMismatch, "ciphertext must be a string or a list, got %s", document.KindOf(d))
	}
}

func (c Ciphertext) MarshalJSON() ([]byte, error) {
	return document.Marshal(c.Document())
}

func (c *Ciphertext) UnmarshalJSON(data []byte) error {
	d, err := document.Parse(bytes.TrimSpace(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	parsed, err := CiphertextFromDocument(d)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var _ json.Marshaler = Ciphertext{}
