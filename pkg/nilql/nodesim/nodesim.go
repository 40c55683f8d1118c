package nodesim

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/document"
	"github.com/nillion/nilql-go/pkg/nilql/logging"
)

var (
	// ErrNodeCount is returned when a request does not carry one item per node.
	ErrNodeCount = errors.New("nodesim: one document per node required")

	// ErrField is returned when a stored document lacks the expected value at a path.
	ErrField = errors.New("nodesim: missing or malformed field")
)

// Net is a cluster of in-memory nodes.
type Net struct {
	nodes  []*node
	logger logging.Logger
}

type node struct {
	id   int
	name string

	mu   sync.Mutex
	docs []document.Document
}

// Option configures a Net.
type Option func(*Net)

// WithLogger sets the logger used for delivery and query events.
func WithLogger(l logging.Logger) Option {
	return func(n *Net) { n.logger = l }
}

// New returns a Net of n empty nodes.
func New(n int, opts ...Option) (*Net, error) {
	if n < 1 {
		return nil, fmt.Errorf("nodesim: cluster must have at least one node, got %d", n)
	}
	net := &Net{nodes: make([]*node, n)}
	for i := range net.nodes {
		net.nodes[i] = &node{id: i, name: uuid.NewString()}
	}
	for _, opt := range opts {
		opt(net)
	}
	net.logger = logging.OrNop(net.logger)
	return net, nil
}

// Size returns the number of nodes.
func (n *Net) Size() int { return len(n.nodes) }

// Cluster returns a cluster descriptor matching the simulated nodes. Each
// node carries a random UUID as its ID.
func (n *Net) Cluster() nilql.Cluster {
	c := nilql.Cluster{Nodes: make([]nilql.Node, len(n.nodes))}
	for i, nd := range n.nodes {
		c.Nodes[i] = nilql.Node{ID: nd.name, URL: "mem://" + nd.name}
	}
	return c
}

// Deliver hands docs[i] to node i. Documents are deep-copied through their
// JSON form, as a real node would receive them.
func (n *Net) Deliver(ctx context.Context, docs []document.Document) error {
	if len(docs) != len(n.nodes) {
		return fmt.Errorf("%w: got %d for %d nodes", ErrNodeCount, len(docs), len(n.nodes))
	}
	copies := make([]document.Document, len(docs))
	for i, d := range docs {
		raw, err := document.Marshal(d)
		if err != nil {
			return fmt.Errorf("nodesim: encode document for node %d: %w", i, err)
		}
		if copies[i], err = document.Parse(raw); err != nil {
			return fmt.Errorf("nodesim: decode document for node %d: %w", i, err)
		}
	}

	err := n.each(ctx, func(_ context.Context, nd *node) error {
		nd.mu.Lock()
		nd.docs = append(nd.docs, copies[nd.id])
		nd.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	n.logger.Debug(ctx, "documents delivered", "nodes", len(n.nodes))
	return nil
}

// Collect returns every node's stored documents, indexed by node.
func (n *Net) Collect(ctx context.Context) ([][]document.Document, error) {
	out := make([][]document.Document, len(n.nodes))
	err := n.each(ctx, func(_ context.Context, nd *node) error {
		out[nd.id] = nd.snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Retrieve returns the i-th stored document from every node, ready for
// nilql.Unify.
func (n *Net) Retrieve(ctx context.Context, i int) ([]document.Document, error) {
	out := make([]document.Document, len(n.nodes))
	err := n.each(ctx, func(_ context.Context, nd *node) error {
		docs := nd.snapshot()
		if i < 0 || i >= len(docs) {
			return fmt.Errorf("nodesim: node %d has no document %d", nd.id, i)
		}
		out[nd.id] = docs[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sum adds, on every node, the integer shares found at path across that
// node's documents modulo 2^32. The result holds one {"$share": total}
// document per node.
func (n *Net) Sum(ctx context.Context, path string) ([]document.Document, error) {
	out := make([]document.Document, len(n.nodes))
	err := n.each(ctx, func(ctx context.Context, nd *node) error {
		var total uint32
		for j, d := range nd.snapshot() {
			if err := ctx.Err(); err != nil {
				return err
			}
			share, ok := shareAt(d, path).(document.Int)
			if !ok {
				return fmt.Errorf("%w: node %d document %d has no integer share at %q", ErrField, nd.id, j, path)
			}
			total += uint32(share)
		}
		out[nd.id] = document.Share(document.Int(int64(total)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	n.logger.Info(ctx, "sum computed", "path", path, "nodes", len(n.nodes))
	return out, nil
}

// SumEncrypted homomorphically adds the Paillier ciphertexts stored at path
// on a single-node cluster. pk only needs public material.
func (n *Net) SumEncrypted(ctx context.Context, pk nilql.Key, path string) (nilql.Ciphertext, error) {
	if len(n.nodes) != 1 {
		return nilql.Ciphertext{}, fmt.Errorf("%w: encrypted sums need a single node, have %d", ErrNodeCount, len(n.nodes))
	}
	var material nilql.Material
	switch k := pk.(type) {
	case *nilql.PublicKey:
		if k != nil {
			material = k.Material()
		}
	case *nilql.SecretKey:
		if k != nil {
			material = k.Material()
		}
	}
	if material.Kind() == nilql.MaterialNone || pk.Operation() != nilql.Sum || pk.NodeCount() != 1 {
		return nilql.Ciphertext{}, fmt.Errorf("nodesim: single-node sum key required")
	}
	p, ok := material.Paillier()
	if !ok {
		return nilql.Ciphertext{}, fmt.Errorf("nodesim: key has no paillier material")
	}
	p = p.Public()

	// Encryption of zero is the identity for addition.
	acc, err := p.Encrypt(big.NewInt(0))
	if err != nil {
		return nilql.Ciphertext{}, err
	}
	nd := n.nodes[0]
	for j, d := range nd.snapshot() {
		if err := ctx.Err(); err != nil {
			return nilql.Ciphertext{}, err
		}
		s, ok := valueAt(d, path).(document.String)
		if !ok {
			return nilql.Ciphertext{}, fmt.Errorf("%w: document %d has no ciphertext at %q", ErrField, j, path)
		}
		c, ok := new(big.Int).SetString(string(s), 16)
		if !ok {
			return nilql.Ciphertext{}, fmt.Errorf("%w: document %d ciphertext at %q is not hexadecimal", ErrField, j, path)
		}
		if acc, err = p.AddCiphers(acc, c); err != nil {
			return nilql.Ciphertext{}, fmt.Errorf("nodesim: document %d: %w", j, err)
		}
	}
	n.logger.Info(ctx, "encrypted sum computed", "path", path, logging.Redacted("ciphertext"))
	return nilql.ScalarCiphertext(acc.Text(16)), nil
}

// Match returns, per node, the indices of stored documents whose value at
// path equals the node's component of probe. Multi-node documents hold
// {"$share": v} at path; single-node documents hold the ciphertext itself.
func (n *Net) Match(ctx context.Context, path string, probe nilql.Ciphertext) ([][]int, error) {
	if probe.Len() != len(n.nodes) {
		return nil, fmt.Errorf("%w: probe has %d components for %d nodes", ErrNodeCount, probe.Len(), len(n.nodes))
	}
	want := make([][]byte, len(n.nodes))
	if s, ok := probe.Scalar(); ok {
		want[0] = []byte(s)
	} else {
		for i, s := range probe.Shares() {
			want[i] = []byte(s.Str())
		}
	}

	out := make([][]int, len(n.nodes))
	err := n.each(ctx, func(ctx context.Context, nd *node) error {
		hits := []int{}
		for j, d := range nd.snapshot() {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := valueAt(d, path)
			if len(n.nodes) > 1 {
				v = shareAt(d, path)
			}
			s, ok := v.(document.String)
			if !ok {
				continue
			}
			if subtle.ConstantTimeCompare([]byte(s), want[nd.id]) == 1 {
				hits = append(hits, j)
			}
		}
		out[nd.id] = hits
		return nil
	})
	if err != nil {
		return nil, err
	}
	n.logger.Debug(ctx, "match evaluated", "path", path, "nodes", len(n.nodes))
	return out, nil
}

// each runs fn for every node concurrently and stops at the first error.
func (n *Net) each(ctx context.Context, fn func(context.Context, *node) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, nd := range n.nodes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, nd)
		})
	}
	return g.Wait()
}

func (nd *node) snapshot() []document.Document {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return append([]document.Document(nil), nd.docs...)
}

// valueAt follows a dotted path of map keys.
func valueAt(d document.Document, path string) document.Document {
	for _, key := range strings.Split(path, ".") {
		v, ok := document.Lookup(d, key)
		if !ok {
			return nil
		}
		d = v
	}
	return d
}

// shareAt returns the payload of the {"$share": v} marker at path.
func shareAt(d document.Document, path string) document.Document {
	v, ok := document.Lookup(valueAt(d, path), document.ShareKey)
	if !ok {
		return nil
	}
	return v
}
