package nilql

import (
	"fmt"

	"github.com/nillion/nilql-go/pkg/nilql/document"
)

// Unify reconstructs a document from the per-node documents produced by
// Allot (and returned by the nodes), decrypting every group of
// {"$share": ...} values with sk. Documents must be structurally congruent;
// values outside shares must be identical across all of them.
func Unify(sk *SecretKey, docs []Document) (Document, error) {
	out, err := unify(sk, docs, 0)
	if err != nil {
		return nil, wrap("Unify", err)
	}
	return out, nil
}

func unify(sk *SecretKey, docs []Document, depth int) (Document, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: document exceeds maximum nesting depth %d", ErrStructure, MaxDepth)
	}
	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("%w: no documents supplied", ErrDocumentMismatch)
	case 1:
		return docs[0], nil
	}

	if lists, ok := allLists(docs); ok && sameLength(lists) {
		out := make(document.List, len(lists[0]))
		column := make([]Document, len(lists))
		for i := range out {
			for j, l := range lists {
				column[j] = l[i]
			}
			v, err := unify(sk, column, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if maps, ok := allMaps(docs); ok {
		if values, ok := shareValues(maps); ok {
			return unifyShares(sk, values, depth)
		}
		if sameKeySets(maps) {
			out := make(document.Map, len(maps[0]))
			column := make([]Document, len(maps))
			for _, k := range maps[0].Keys() {
				for j, m := range maps {
					column[j] = m[k]
				}
				v, err := unify(sk, column, depth+1)
				if err != nil {
					return nil, err
				}
				out[k] = v
			}
			return out, nil
		}
	}

	for _, d := range docs[1:] {
		if !document.Equal(docs[0], d) {
			return nil, ErrDocumentMismatch
		}
	}
	return docs[0], nil
}

// unifyShares handles one {"$share": ...} per node. Scalar shares are
// decrypted together; share lists are unified position by position.
func unifyShares(sk *SecretKey, values []Document, depth int) (Document, error) {
	if shares, ok := scalarShares(values); ok {
		p, err := Decrypt(sk, SharesCiphertext(shares...))
		if err != nil {
			return nil, err
		}
		return plaintextDocument(p), nil
	}

	lists, ok := allLists(values)
	if !ok || !sameLength(lists) {
		return nil, ErrDocumentMismatch
	}
	out := make(document.List, len(lists[0]))
	for i := range out {
		column := make([]Document, len(lists))
		for j, l := range lists {
			column[j] = document.Share(l[i])
		}
		v, err := unify(sk, column, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func plaintextDocument(p Plaintext) Document {
	if v, ok := p.Int(); ok {
		return document.Int(v)
	}
	s, _ := p.Str()
	return document.String(s)
}

func allLists(docs []Document) ([]document.List, bool) {
	out := make([]document.List, len(docs))
	for i, d := range docs {
		l, ok := d.(document.List)
		if !ok {
			return nil, false
		}
		out[i] = l
	}
	return out, true
}

func sameLength(lists []document.List) bool {
	for _, l := range lists[1:] {
		if len(l) != len(lists[0]) {
			return false
		}
	}
	return true
}

func allMaps(docs []Document) ([]document.Map, bool) {
	out := make([]document.Map, len(docs))
	for i, d := range docs {
		m, ok := d.(document.Map)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

func sameKeySets(maps []document.Map) bool {
	for _, m := range maps[1:] {
		if !document.SameKeys(maps[0], m) {
			return false
		}
	}
	return true
}

// shareValues returns the $share payloads when every map is a share marker.
func shareValues(maps []document.Map) ([]Document, bool) {
	out := make([]Document, len(maps))
	for i, m := range maps {
		v, ok := m[document.ShareKey]
		if !ok || len(m) != 1 {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func scalarShares(values []Document) ([]Share, bool) {
	out := make([]Share, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case document.String:
			out[i] = StringShare(string(x))
		case document.Int:
			out[i] = IntegerShare(int64(x))
		default:
			return nil, false
		}
	}
	return out, true
}
