package nilql_test

import (
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/paillier"
)

var (
	sumKeyOnce sync.Once
	sumKey     *nilql.SecretKey
	sumKeyErr  error
)

// sumSingleKey returns a Sum key for one node built on a small Paillier
// modulus. Full-size generation is covered by TestGenerateSumSingleNode.
func sumSingleKey(t *testing.T) *nilql.SecretKey {
	t.Helper()
	sumKeyOnce.Do(func() {
		p, err := paillier.GenerateFrom(rand.Reader, 512)
		if err != nil {
			sumKeyErr = err
			return
		}
		m, err := nilql.PaillierMaterial(p)
		if err != nil {
			sumKeyErr = err
			return
		}
		sumKey, sumKeyErr = nilql.NewSecretKey(m, nilql.NewCluster(1), nilql.Sum)
	})
	require.NoError(t, sumKeyErr)
	return sumKey
}

func generate(t *testing.T, nodes int, op nilql.Operation) *nilql.SecretKey {
	t.Helper()
	if op == nilql.Sum && nodes == 1 {
		return sumSingleKey(t)
	}
	sk, err := nilql.GenerateSecretKey(nilql.NewCluster(nodes), op)
	require.NoError(t, err)
	return sk
}
