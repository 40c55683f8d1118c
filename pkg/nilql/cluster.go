package nilql

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Node describes one member of a cluster. Both fields are optional; a key
// only depends on the number of nodes and their order. Any other JSON
// fields of a loaded node are kept verbatim and written back on dump.
type Node struct {
	ID  string `json:"id,omitempty" yaml:"id,omitempty"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// extra holds the remaining fields as a compact JSON object with sorted
	// keys, or "" when there are none.
	extra string
}

// UnmarshalJSON reads any JSON object.
func (n *Node) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: cluster node must be an object", ErrConfiguration)
	}
	var node Node
	for name, dst := range map[string]*string{"id": &node.ID, "url": &node.URL} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: cluster node %s must be a string", ErrConfiguration, name)
		}
		delete(fields, name)
	}
	if len(fields) > 0 {
		extra, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		node.extra = string(extra)
	}
	*n = node
	return nil
}

// MarshalJSON writes the known fields together with any kept ones.
func (n Node) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if n.extra != "" {
		if err := json.Unmarshal([]byte(n.extra), &fields); err != nil {
			return nil, err
		}
	}
	for name, v := range map[string]string{"id": n.ID, "url": n.URL} {
		if v == "" {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[name] = raw
	}
	return json.Marshal(fields)
}

// Cluster is the ordered set of nodes a key is bound to. Share i of a
// multi-node ciphertext belongs to Nodes[i].
type Cluster struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// NewCluster returns a cluster of n anonymous nodes.
func NewCluster(n int) Cluster {
	if n < 0 {
		n = 0
	}
	return Cluster{Nodes: make([]Node, n)}
}

// NodeCount returns the number of nodes.
func (c Cluster) NodeCount() int { return len(c.Nodes) }

// Equal reports whether two clusters list the same nodes in the same order.
func (c Cluster) Equal(o Cluster) bool { return slices.Equal(c.Nodes, o.Nodes) }

func (c Cluster) clone() Cluster {
	return Cluster{Nodes: slices.Clone(c.Nodes)}
}

func (c Cluster) validate() error {
	if len(c.Nodes) < 1 {
		return fmt.Errorf("%w: cluster configuration must contain at least one node", ErrConfiguration)
	}
	return nil
}

// UnmarshalJSON requires the nodes list to be present.
func (c *Cluster) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes *[]Node `json:"nodes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: valid cluster configuration is required", ErrConfiguration)
	}
	if raw.Nodes == nil {
		return fmt.Errorf("%w: valid cluster configuration is required", ErrConfiguration)
	}
	c.Nodes = *raw.Nodes
	return nil
}

// MarshalJSON always emits a nodes list, even when empty.
func (c Cluster) MarshalJSON() ([]byte, error) {
	nodes := c.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	return json.Marshal(struct {
		Nodes []Node `json:"nodes"`
	}{nodes})
}
