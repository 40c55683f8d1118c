package nodesim

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/document"
	"github.com/nillion/nilql-go/pkg/nilql/paillier"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newNet(t *testing.T, n int) *Net {
	t.Helper()
	net, err := New(n)
	require.NoError(t, err)
	return net
}

func deliverValue(t *testing.T, net *Net, key nilql.Key, field string, p nilql.Plaintext) {
	t.Helper()
	ct, err := nilql.Encrypt(key, p)
	require.NoError(t, err)

	var doc document.Document
	if ct.IsScalar() {
		doc = document.Map{field: ct.Document()}
	} else {
		doc = document.Map{field: nilql.AllotmentOf(ct)}
	}
	docs, err := nilql.Allot(doc)
	require.NoError(t, err)
	require.NoError(t, net.Deliver(testContext(t), docs))
}

func TestNew(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	net := newNet(t, 3)
	assert.Equal(t, 3, net.Size())

	c := net.Cluster()
	require.Equal(t, 3, c.NodeCount())
	seen := map[string]bool{}
	for _, nd := range c.Nodes {
		_, err := uuid.Parse(nd.ID)
		require.NoError(t, err)
		assert.False(t, seen[nd.ID])
		seen[nd.ID] = true
	}
	assert.True(t, c.Equal(net.Cluster()))
}

func TestSumShares(t *testing.T) {
	net := newNet(t, 3)
	sk, err := nilql.GenerateSecretKey(net.Cluster(), nilql.Sum)
	require.NoError(t, err)

	for _, v := range []int64{10, 20, 30, -100} {
		deliverValue(t, net, sk, "v", nilql.Integer(v))
	}

	shares, err := net.Sum(testContext(t), "v")
	require.NoError(t, err)
	require.Len(t, shares, 3)

	total, err := nilql.Unify(sk, shares)
	require.NoError(t, err)
	assert.Equal(t, document.Document(document.Int(-40)), total)
}

func TestSumNestedPath(t *testing.T) {
	net := newNet(t, 2)
	sk, err := nilql.GenerateSecretKey(net.Cluster(), nilql.Sum)
	require.NoError(t, err)

	for _, v := range []int64{1, 2} {
		ct, err := nilql.Encrypt(sk, nilql.Integer(v))
		require.NoError(t, err)
		docs, err := nilql.Allot(document.Map{"dat": document.Map{"n": nilql.AllotmentOf(ct)}})
		require.NoError(t, err)
		require.NoError(t, net.Deliver(testContext(t), docs))
	}

	shares, err := net.Sum(testContext(t), "dat.n")
	require.NoError(t, err)
	total, err := nilql.Unify(sk, shares)
	require.NoError(t, err)
	assert.Equal(t, document.Document(document.Int(3)), total)

	_, err = net.Sum(testContext(t), "dat.missing")
	require.ErrorIs(t, err, ErrField)
}

func TestSumEncrypted(t *testing.T) {
	p, err := paillier.GenerateFrom(rand.Reader, 512)
	require.NoError(t, err)
	m, err := nilql.PaillierMaterial(p)
	require.NoError(t, err)

	net := newNet(t, 1)
	sk, err := nilql.NewSecretKey(m, net.Cluster(), nilql.Sum)
	require.NoError(t, err)
	pk, err := nilql.DerivePublicKey(sk)
	require.NoError(t, err)

	for _, v := range []int64{5, 7, -2} {
		deliverValue(t, net, pk, "v", nilql.Integer(v))
	}

	ct, err := net.SumEncrypted(testContext(t), pk, "v")
	require.NoError(t, err)
	got, err := nilql.Decrypt(sk, ct)
	require.NoError(t, err)
	assert.True(t, nilql.Integer(10).Equal(got), "got %s", got)

	multi := newNet(t, 2)
	_, err = multi.SumEncrypted(testContext(t), pk, "v")
	require.ErrorIs(t, err, ErrNodeCount)

	var nilKey *nilql.PublicKey
	_, err = net.SumEncrypted(testContext(t), nilKey, "v")
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	for _, nodes := range []int{1, 3} {
		net := newNet(t, nodes)
		sk, err := nilql.GenerateSecretKey(net.Cluster(), nilql.Match)
		require.NoError(t, err)

		for _, v := range []string{"abc", "xyz", "abc"} {
			deliverValue(t, net, sk, "name", nilql.String(v))
		}

		probe, err := nilql.Encrypt(sk, nilql.String("abc"))
		require.NoError(t, err)
		hits, err := net.Match(testContext(t), "name", probe)
		require.NoError(t, err)
		require.Len(t, hits, nodes)
		for _, h := range hits {
			assert.Equal(t, []int{0, 2}, h)
		}

		probe, err = nilql.Encrypt(sk, nilql.String("none"))
		require.NoError(t, err)
		hits, err = net.Match(testContext(t), "name", probe)
		require.NoError(t, err)
		for _, h := range hits {
			assert.Empty(t, h)
		}
	}
}

func TestRetrieveAndUnify(t *testing.T) {
	net := newNet(t, 3)
	sk, err := nilql.GenerateSecretKey(net.Cluster(), nilql.Store)
	require.NoError(t, err)

	ct, err := nilql.Encrypt(sk, nilql.String("secret"))
	require.NoError(t, err)
	docs, err := nilql.Allot(document.Map{"id": document.Int(1), "val": nilql.AllotmentOf(ct)})
	require.NoError(t, err)
	require.NoError(t, net.Deliver(testContext(t), docs))

	stored, err := net.Collect(testContext(t))
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, s := range stored {
		assert.Len(t, s, 1)
	}

	back, err := net.Retrieve(testContext(t), 0)
	require.NoError(t, err)
	doc, err := nilql.Unify(sk, back)
	require.NoError(t, err)
	assert.True(t, document.Equal(document.Map{"id": document.Int(1), "val": document.String("secret")}, doc))

	_, err = net.Retrieve(testContext(t), 1)
	require.Error(t, err)
}

func TestDeliverErrors(t *testing.T) {
	net := newNet(t, 2)
	err := net.Deliver(testContext(t), []document.Document{document.Int(1)})
	require.ErrorIs(t, err, ErrNodeCount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = net.Deliver(ctx, []document.Document{document.Int(1), document.Int(2)})
	require.ErrorIs(t, err, context.Canceled)

	_, err = net.Sum(ctx, "v")
	require.ErrorIs(t, err, context.Canceled)

	_, err = net.Match(testContext(t), "v", nilql.ScalarCiphertext("x"))
	require.ErrorIs(t, err, ErrNodeCount)
}
