package nilql

import (
	"fmt"

	"github.com/nillion/nilql-go/pkg/nilql/document"
)

// MaxDepth bounds the nesting of documents accepted by Allot and Unify.
const MaxDepth = 512

// Allot converts a document that may contain {"$allot": ...} markers into
// one document per node. Each marker's i-th share becomes {"$share": ...} in
// the i-th output; everything else is copied into every output. A document
// without markers yields a single-element slice holding it unchanged.
func Allot(doc Document) ([]Document, error) {
	out, err := allot(doc, 0)
	if err != nil {
		return nil, wrap("Allot", err)
	}
	return out, nil
}

func allot(doc Document, depth int) ([]Document, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: document exceeds maximum nesting depth %d", ErrStructure, MaxDepth)
	}

	switch d := doc.(type) {
	case nil, document.Null, document.Bool, document.Int, document.String:
		return []Document{doc}, nil

	case document.List:
		results := make([][]Document, len(d))
		for i, e := range d {
			r, err := allot(e, depth+1)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		n, err := multiplicity(results, "number of shares is not consistent")
		if err != nil {
			return nil, err
		}
		shares := make([]Document, n)
		for i := range shares {
			share := make(document.List, len(results))
			for j, r := range results {
				share[j] = pick(r, i)
			}
			shares[i] = share
		}
		return shares, nil

	case document.Map:
		if items, ok := d[document.AllotKey]; ok {
			if len(d) != 1 {
				return nil, fmt.Errorf("%w: allotment must only have one key", ErrStructure)
			}
			return allotItems(items, depth)
		}

		keys := d.Keys()
		results := make([][]Document, len(keys))
		for i, k := range keys {
			r, err := allot(d[k], depth+1)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		n, err := multiplicity(results, "number of shares in subdocument is not consistent")
		if err != nil {
			return nil, err
		}
		shares := make([]Document, n)
		for i := range shares {
			share := make(document.Map, len(keys))
			for j, k := range keys {
				share[k] = pick(results[j], i)
			}
			shares[i] = share
		}
		return shares, nil

	default:
		return nil, fmt.Errorf("%w: %T", document.ErrUnsupported, doc)
	}
}

// allotItems distributes the value of an {"$allot": items} marker. A flat
// list of shares maps directly onto {"$share": item}; a list that nests
// further share lists is allotted recursively and each node receives the
// list of its shares under a single {"$share": [...]} wrapper.
func allotItems(items Document, depth int) ([]Document, error) {
	list, ok := items.(document.List)
	if !ok {
		return nil, fmt.Errorf("%w: allotment must be a list of shares", ErrStructure)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: allotment must contain at least one share", ErrStructure)
	}

	flat := true
	for _, item := range list {
		switch item.(type) {
		case document.String, document.Int:
		default:
			flat = false
		}
	}
	if flat {
		shares := make([]Document, len(list))
		for i, item := range list {
			shares[i] = document.Share(item)
		}
		return shares, nil
	}

	wrapped := make(document.List, len(list))
	for i, item := range list {
		if _, ok := item.(document.List); !ok {
			return nil, fmt.Errorf("%w: nested allotment must contain only lists of shares", ErrStructure)
		}
		wrapped[i] = document.Allotment(item)
	}
	perNode, err := allot(wrapped, depth+1)
	if err != nil {
		return nil, err
	}
	out := make([]Document, len(perNode))
	for i, node := range perNode {
		entries := node.(document.List)
		values := make(document.List, len(entries))
		for j, e := range entries {
			v, ok := document.Lookup(e, document.ShareKey)
			if !ok {
				return nil, fmt.Errorf("%w: nested allotment produced a non-share entry", ErrStructure)
			}
			values[j] = v
		}
		out[i] = document.Share(values)
	}
	return out, nil
}

// multiplicity returns the single share count greater than one found among
// results, or one if every result is a single document.
func multiplicity(results [][]Document, msg string) (int, error) {
	n := 1
	for _, r := range results {
		if len(r) == 1 {
			continue
		}
		if n == 1 {
			n = len(r)
		} else if n != len(r) {
			return 0, fmt.Errorf("%w: %s", ErrStructure, msg)
		}
	}
	return n, nil
}

// pick broadcasts single results and selects the i-th share otherwise.
func pick(r []Document, i int) Document {
	if len(r) == 1 {
		return r[0]
	}
	return r[i]
}
