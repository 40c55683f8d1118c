package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

const (
	// IntegerMin is the smallest integer plaintext that can be encoded.
	IntegerMin = -2147483648

	// IntegerMax is the largest integer plaintext that can be encoded.
	IntegerMax = 2147483647

	// StringBufferMax bounds the UTF-8 payload of a string plaintext.
	StringBufferMax = 4096

	tagInteger byte = 0
	tagString  byte = 1

	integerWidth = 8
)

var (
	// ErrDecode is returned when a buffer does not hold an encoded plaintext.
	ErrDecode = errors.New("cannot decode value")

	// ErrRange is returned when a plaintext falls outside the encodable bounds.
	ErrRange = errors.New("plaintext out of range")
)

// Kind discriminates the two plaintext variants.
type Kind uint8

const (
	KindInteger Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Plaintext is either a 32-bit signed integer or a UTF-8 string. The zero
// value is the integer 0.
type Plaintext struct {
	kind Kind
	i    int64
	s    string
}

// Integer returns an integer plaintext. Range checks happen at encoding time
// so that callers can build values from untrusted input and get a typed error.
func Integer(v int64) Plaintext { return Plaintext{kind: KindInteger, i: v} }

// String returns a string plaintext.
func String(v string) Plaintext { return Plaintext{kind: KindString, s: v} }

func (p Plaintext) Kind() Kind { return p.kind }

// Int returns the integer value and whether p holds an integer.
func (p Plaintext) Int() (int64, bool) { return p.i, p.kind == KindInteger }

// Str returns the string value and whether p holds a string.
func (p Plaintext) Str() (string, bool) { return p.s, p.kind == KindString }

// Equal reports whether two plaintexts hold the same variant and value.
func (p Plaintext) Equal(o Plaintext) bool {
	if p.kind != o.kind {
		return false
	}
	if p.kind == KindInteger {
		return p.i == o.i
	}
	return p.s == o.s
}

// String renders the plaintext for diagnostics. Callers must not log
// plaintexts that are themselves sensitive.
func (p Plaintext) String() string {
	if p.kind == KindInteger {
		return strconv.FormatInt(p.i, 10)
	}
	return strconv.Quote(p.s)
}

// InIntegerRange reports whether v can be encoded as an integer plaintext.
func InIntegerRange(v int64) bool {
	return v >= IntegerMin && v <= IntegerMax
}

// Encode serialises p into its tagged buffer.
func Encode(p Plaintext) ([]byte, error) {
	switch p.kind {
	case KindInteger:
		if !InIntegerRange(p.i) {
			return nil, fmt.Errorf("%w: numeric plaintext must be a valid 32-bit signed integer", ErrRange)
		}
		buf := make([]byte, 1+integerWidth)
		buf[0] = tagInteger
		binary.LittleEndian.PutUint64(buf[1:], uint64(p.i-IntegerMin))
		return buf, nil
	case KindString:
		if len(p.s) > StringBufferMax {
			return nil, fmt.Errorf("%w: string plaintext must be possible to encode in %d bytes or fewer", ErrRange, StringBufferMax)
		}
		if !utf8.ValidString(p.s) {
			return nil, fmt.Errorf("%w: string plaintext must be valid UTF-8", ErrRange)
		}
		buf := make([]byte, 1+len(p.s))
		buf[0] = tagString
		copy(buf[1:], p.s)
		return buf, nil
	default:
		return nil, fmt.Errorf("cannot encode plaintext of kind %d", p.kind)
	}
}

// Decode parses a buffer produced by Encode.
func Decode(buf []byte) (Plaintext, error) {
	if len(buf) == 0 {
		return Plaintext{}, fmt.Errorf("%w: empty buffer", ErrDecode)
	}
	switch buf[0] {
	case tagInteger:
		if len(buf) != 1+integerWidth {
			return Plaintext{}, fmt.Errorf("%w: integer payload must be %d bytes", ErrDecode, integerWidth)
		}
		u := binary.LittleEndian.Uint64(buf[1:])
		if u > IntegerMax-IntegerMin {
			return Plaintext{}, fmt.Errorf("%w: integer payload out of range", ErrDecode)
		}
		return Integer(int64(u) + IntegerMin), nil
	case tagString:
		if !utf8.Valid(buf[1:]) {
			return Plaintext{}, fmt.Errorf("%w: string payload is not valid UTF-8", ErrDecode)
		}
		return String(string(buf[1:])), nil
	default:
		return Plaintext{}, fmt.Errorf("%w: unknown tag %d", ErrDecode, buf[0])
	}
}
