package nilql

import (
	"errors"
	"fmt"

	"github.com/nillion/nilql-go/pkg/nilql/codec"
)

var (
	// ErrConfiguration indicates an invalid cluster, operation or key material.
	ErrConfiguration = errors.New("invalid key configuration")

	// ErrRange indicates a plaintext outside the supported bounds.
	ErrRange = codec.ErrRange

	// ErrTypeMismatch indicates a ciphertext whose shape does not fit the key.
	ErrTypeMismatch = errors.New("ciphertext shape does not match key")

	// ErrClusterSize accompanies ErrTypeMismatch when only the share count is wrong.
	ErrClusterSize = errors.New("secret key and ciphertext must have the same associated cluster size")

	// ErrStructure indicates a document that cannot be allotted.
	ErrStructure = errors.New("invalid document structure")

	// ErrDocumentMismatch indicates per-node documents that cannot be unified.
	ErrDocumentMismatch = errors.New("array of compatible document shares expected")

	// ErrInvalidCiphertext indicates that decryption failed. The cause is
	// deliberately not reported.
	ErrInvalidCiphertext = errors.New("cannot decrypt supplied ciphertext using the supplied key")
)

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("nilql.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorf creates a new Error whose cause wraps kind.
func errorf(op string, kind error, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}

// wrap attaches op to err unless err is already an *Error.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// invalidCiphertext is returned for every decryption failure so that
// callers cannot distinguish tampering from key mismatch.
func invalidCiphertext(op string) error {
	return &Error{Op: op, Err: ErrInvalidCiphertext}
}
