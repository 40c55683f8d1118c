package nilql

import (
	"encoding/json"
	"fmt"
)

// Key is implemented by *SecretKey and *PublicKey; either can encrypt.
type Key interface {
	Cluster() Cluster
	Operation() Operation
	NodeCount() int
	keyMaterial() Material
	isNil() bool
}

// isNilKey catches both a nil interface and a typed nil pointer.
func isNilKey(k Key) bool {
	return k == nil || k.isNil()
}

// SecretKey binds key material to a cluster and a single operation. It is
// immutable and safe for concurrent use.
type SecretKey struct {
	material  Material
	cluster   Cluster
	operation Operation
}

// GenerateSecretKey builds a key for the given cluster and operation,
// drawing fresh material as required by the operation and node count.
func GenerateSecretKey(cluster Cluster, op Operation) (*SecretKey, error) {
	if err := cluster.validate(); err != nil {
		return nil, wrap("GenerateSecretKey", err)
	}
	if !op.valid() {
		return nil, errorf("GenerateSecretKey", ErrConfiguration, "secret key must support exactly one operation")
	}
	material, err := generateMaterial(op, cluster.NodeCount())
	if err != nil {
		return nil, wrap("GenerateSecretKey", err)
	}
	return NewSecretKey(material, cluster, op)
}

// NewSecretKey assembles a key from existing material. The material variant
// must be the one GenerateSecretKey would produce for op and cluster.
func NewSecretKey(material Material, cluster Cluster, op Operation) (*SecretKey, error) {
	if err := cluster.validate(); err != nil {
		return nil, wrap("NewSecretKey", err)
	}
	if !op.valid() {
		return nil, errorf("NewSecretKey", ErrConfiguration, "secret key must support exactly one operation")
	}
	want := expectedMaterial(op, cluster.NodeCount())
	if material.kind != want {
		return nil, errorf("NewSecretKey", ErrConfiguration,
			"%s key for %d node(s) requires %s material, got %s", op, cluster.NodeCount(), want, material.kind)
	}
	return &SecretKey{material: material, cluster: cluster.clone(), operation: op}, nil
}

func (k *SecretKey) Cluster() Cluster { return k.cluster.clone() }
func (k *SecretKey) Operation() Operation { return k.operation }
func (k *SecretKey) NodeCount() int { return k.cluster.NodeCount() }
func (k *SecretKey) Material() Material { return k.material }
func (k *SecretKey) keyMaterial() Material { return k.material }
func (k *SecretKey) isNil() bool { return k == nil }

// Equal reports whether two keys hold the same material, cluster and operation.
func (k *SecretKey) Equal(o *SecretKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.operation == o.operation && k.cluster.Equal(o.cluster) && k.material.Equal(o.material)
}

type keyJSON struct {
	Material   json.RawMessage `json:"material"`
	Cluster    Cluster         `json:"cluster"`
	Operation  string          `json:"operation,omitempty"`
	Operations map[string]bool `json:"operations,omitempty"`
}

type keyOut struct {
	Material  Material  `json:"material"`
	Cluster   Cluster   `json:"cluster"`
	Operation Operation `json:"operation"`
}

// Dump returns the JSON representation of the key. The output contains the
// secret material in the clear.
func (k *SecretKey) Dump() ([]byte, error) {
	out, err := json.Marshal(keyOut{Material: k.material, Cluster: k.cluster, Operation: k.operation})
	if err != nil {
		return nil, wrap("SecretKey.Dump", err)
	}
	return out, nil
}

func (k *SecretKey) MarshalJSON() ([]byte, error) { return k.Dump() }

func (k *SecretKey) UnmarshalJSON(data []byte) error {
	loaded, err := LoadSecretKey(data)
	if err != nil {
		return err
	}
	*k = *loaded
	return nil
}

// LoadSecretKey parses the output of Dump. The operation may be given
// either as "operation": "sum" or as "operations": {"sum": true}.
func LoadSecretKey(data []byte) (*SecretKey, error) {
	cluster, op, material, err := decodeKey(data)
	if err != nil {
		return nil, wrap("LoadSecretKey", err)
	}
	if material.kind == MaterialPaillierPublic {
		return nil, errorf("LoadSecretKey", ErrConfiguration, "public key material supplied for a secret key")
	}
	return NewSecretKey(material, cluster, op)
}

func decodeKey(data []byte) (Cluster, Operation, Material, error) {
	var raw keyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Cluster{}, OperationUnknown, Material{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	var (
		op  Operation
		err error
	)
	switch {
	case raw.Operation != "" && raw.Operations != nil:
		return Cluster{}, OperationUnknown, Material{}, fmt.Errorf("%w: both operation and operations given", ErrConfiguration)
	case raw.Operation != "":
		op, err = ParseOperation(raw.Operation)
	default:
		op, err = operationFromFlags(raw.Operations)
	}
	if err != nil {
		return Cluster{}, OperationUnknown, Material{}, err
	}
	material, err := decodeMaterial(raw.Material, op)
	if err != nil {
		return Cluster{}, OperationUnknown, Material{}, err
	}
	return raw.Cluster, op, material, nil
}

// PublicKey holds the public half of a single-node Sum key.
type PublicKey struct {
	material  Material
	cluster   Cluster
	operation Operation
}

// DerivePublicKey extracts the Paillier public key from a Sum key for a
// single-node cluster. Any other key yields ErrConfiguration.
func DerivePublicKey(sk *SecretKey) (*PublicKey, error) {
	if sk == nil || sk.material.kind != MaterialPaillierSecret {
		return nil, errorf("DerivePublicKey", ErrConfiguration, "cannot create public key for supplied secret key")
	}
	return &PublicKey{
		material:  Material{kind: MaterialPaillierPublic, paillier: sk.material.paillier.Public()},
		cluster:   sk.cluster.clone(),
		operation: sk.operation,
	}, nil
}

func (k *PublicKey) Cluster() Cluster { return k.cluster.clone() }
func (k *PublicKey) Operation() Operation { return k.operation }
func (k *PublicKey) NodeCount() int { return k.cluster.NodeCount() }
func (k *PublicKey) Material() Material { return k.material }
func (k *PublicKey) keyMaterial() Material { return k.material }
func (k *PublicKey) isNil() bool { return k == nil }

func (k *PublicKey) Equal(o *PublicKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.operation == o.operation && k.cluster.Equal(o.cluster) && k.material.Equal(o.material)
}

// Dump returns the JSON representation of the public key.
func (k *PublicKey) Dump() ([]byte, error) {
	out, err := json.Marshal(keyOut{Material: k.material, Cluster: k.cluster, Operation: k.operation})
	if err != nil {
		return nil, wrap("PublicKey.Dump", err)
	}
	return out, nil
}

func (k *PublicKey) MarshalJSON() ([]byte, error) { return k.Dump() }

func (k *PublicKey) UnmarshalJSON(data []byte) error {
	loaded, err := LoadPublicKey(data)
	if err != nil {
		return err
	}
	*k = *loaded
	return nil
}

// LoadPublicKey parses the output of PublicKey.Dump.
func LoadPublicKey(data []byte) (*PublicKey, error) {
	cluster, op, material, err := decodeKey(data)
	if err != nil {
		return nil, wrap("LoadPublicKey", err)
	}
	if err := cluster.validate(); err != nil {
		return nil, wrap("LoadPublicKey", err)
	}
	if op != Sum || cluster.NodeCount() != 1 || material.kind != MaterialPaillierPublic {
		return nil, errorf("LoadPublicKey", ErrConfiguration, "public keys exist only for sum operations on single-node clusters")
	}
	return &PublicKey{material: material, cluster: cluster.clone(), operation: op}, nil
}
