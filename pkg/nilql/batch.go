package nilql

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchEncryptParams contains parameters for EncryptBatch.
type BatchEncryptParams struct {
	// Key is the secret or public key to encrypt under.
	Key Key

	// Plaintexts is the list of values to encrypt.
	Plaintexts []Plaintext

	// Limit caps the number of concurrent encryptions. Zero means
	// runtime.GOMAXPROCS(0).
	Limit int
}

// BatchEncryptResult contains the ciphertexts in the order of the inputs.
type BatchEncryptResult struct {
	Ciphertexts []Ciphertext
}

// EncryptBatch encrypts many plaintexts concurrently. It returns the first
// error encountered, or ctx.Err() if the context ends first; no partial
// result is returned.
func EncryptBatch(ctx context.Context, params *BatchEncryptParams) (*BatchEncryptResult, error) {
	const op = "EncryptBatch"
	if params == nil {
		return nil, errorf(op, ErrConfiguration, "nil params")
	}
	if isNilKey(params.Key) {
		return nil, errorf(op, ErrConfiguration, "nil key")
	}
	if params.Limit < 0 {
		return nil, errorf(op, ErrConfiguration, "limit must not be negative, got %d", params.Limit)
	}
	limit := params.Limit
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]Ciphertext, len(params.Plaintexts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range params.Plaintexts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ct, err := Encrypt(params.Key, p)
			if err != nil {
				return fmt.Errorf("plaintext %d: %w", i, err)
			}
			out[i] = ct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrap(op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return &BatchEncryptResult{Ciphertexts: out}, nil
}
