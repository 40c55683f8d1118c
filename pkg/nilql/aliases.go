package nilql

import (
	"github.com/nillion/nilql-go/pkg/nilql/codec"
	"github.com/nillion/nilql-go/pkg/nilql/document"
)

// Type aliases so that callers can work with plaintexts and documents
// without importing the sub-packages directly.

// Plaintext is an alias for codec.Plaintext.
type Plaintext = codec.Plaintext

// Document is an alias for document.Document.
type Document = document.Document

// Plaintext bounds re-exported for convenience.
const (
	IntegerMin      = codec.IntegerMin
	IntegerMax      = codec.IntegerMax
	StringBufferMax = codec.StringBufferMax
)

// Integer returns an integer plaintext.
func Integer(v int64) Plaintext { return codec.Integer(v) }

// String returns a string plaintext.
func String(v string) Plaintext { return codec.String(v) }
