package nilql

import "fmt"

// Operation selects what a key protects values for. Exactly one is set per key.
type Operation uint8

const (
	OperationUnknown Operation = iota
	// Store protects values for storage and later retrieval.
	Store
	// Match produces deterministic ciphertexts that can be compared for equality.
	Match
	// Sum protects integers so that nodes can add them.
	Sum
)

func (op Operation) String() string {
	switch op {
	case Store:
		return "store"
	case Match:
		return "match"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

func (op Operation) valid() bool {
	return op == Store || op == Match || op == Sum
}

// ParseOperation maps a wire name to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "store":
		return Store, nil
	case "match":
		return Match, nil
	case "sum":
		return Sum, nil
	default:
		return OperationUnknown, fmt.Errorf("%w: unknown operation %q", ErrConfiguration, s)
	}
}

// operationFromFlags accepts the {"store": true} form. Exactly one entry may
// be enabled.
func operationFromFlags(flags map[string]bool) (Operation, error) {
	selected := OperationUnknown
	count := 0
	for name, on := range flags {
		op, err := ParseOperation(name)
		if err != nil {
			return OperationUnknown, fmt.Errorf("%w: valid operations specification is required", ErrConfiguration)
		}
		if on {
			selected = op
			count++
		}
	}
	if count != 1 {
		return OperationUnknown, fmt.Errorf("%w: secret key must support exactly one operation", ErrConfiguration)
	}
	return selected, nil
}

func (op Operation) MarshalText() ([]byte, error) {
	if !op.valid() {
		return nil, fmt.Errorf("%w: secret key must support exactly one operation", ErrConfiguration)
	}
	return []byte(op.String()), nil
}

func (op *Operation) UnmarshalText(text []byte) error {
	parsed, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
