package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// AllotKey marks a multi-node ciphertext awaiting distribution.
	AllotKey = "$allot"

	// ShareKey marks the share of a ciphertext held by a single node.
	ShareKey = "$share"
)

// ErrUnsupported is returned when a value has no document representation.
var ErrUnsupported = errors.New("integer, boolean, string, list, or dictionary expected")

// Kind enumerates the document variants.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Document is a closed sum type; only the types in this package implement it.
type Document interface {
	Kind() Kind
	isDocument()
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	String string
	List   []Document
	Map    map[string]Document
)

func (Null) Kind() Kind { return KindNull }
func (Bool) Kind() Kind { return KindBool }
func (Int) Kind() Kind { return KindInt }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind { return KindList }
func (Map) Kind() Kind { return KindMap }

func (Null) isDocument() {}
func (Bool) isDocument() {}
func (Int) isDocument() {}
func (String) isDocument() {}
func (List) isDocument() {}
func (Map) isDocument() {}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// KindOf returns the kind of d, treating a nil interface as Null.
func KindOf(d Document) Kind {
	if d == nil {
		return KindNull
	}
	return d.Kind()
}

// IsScalar reports whether d is a leaf value (null, bool, int or string).
func IsScalar(d Document) bool {
	switch KindOf(d) {
	case KindList, KindMap:
		return false
	default:
		return true
	}
}

// Allotment wraps a multi-node ciphertext representation for distribution.
func Allotment(v Document) Map { return Map{AllotKey: v} }

// Share wraps the value held by one node.
func Share(v Document) Map { return Map{ShareKey: v} }

// Lookup returns the value stored under key when d is a map containing it.
func Lookup(d Document, key string) (Document, bool) {
	m, ok := d.(Map)
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep equality. A nil interface equals Null.
func Equal(a, b Document) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil, Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case String:
		return av == b.(String)
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// SameKeys reports whether two maps have identical key sets.
func SameKeys(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// FromValue converts decoded JSON or native Go values into a Document.
// Integral numbers become Int; anything else numeric is rejected.
func FromValue(v any) (Document, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Document:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: integer %d overflows", ErrUnsupported, x)
		}
		return Int(x), nil
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return nil, fmt.Errorf("%w: non-integral number %v", ErrUnsupported, x)
		}
		return Int(int64(x)), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s", ErrUnsupported, x.String())
		}
		return Int(i), nil
	case []any:
		out := make(List, len(x))
		for i, e := range x {
			d, err := FromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case []string:
		out := make(List, len(x))
		for i, e := range x {
			out[i] = String(e)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(x))
		for k, e := range x {
			d, err := FromValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupported, v)
	}
}

// ToValue converts d into plain Go values suitable for encoding/json.
func ToValue(d Document) any {
	switch x := d.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case String:
		return string(x)
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToValue(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToValue(e)
		}
		return out
	default:
		return nil
	}
}

// Parse decodes a JSON text into a Document.
func Parse(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("document: decode: %w", err)
	}
	if dec.More() {
		return nil, errors.New("document: trailing data after value")
	}
	return FromValue(v)
}

// Marshal encodes d as JSON with map keys in sorted order.
func Marshal(d Document) ([]byte, error) {
	return json.Marshal(ToValue(d))
}
