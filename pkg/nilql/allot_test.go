package nilql_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nillion/nilql-go/pkg/nilql"
	"github.com/nillion/nilql-go/pkg/nilql/document"
)

func encryptDoc(t *testing.T, key nilql.Key, p nilql.Plaintext) document.Map {
	t.Helper()
	ct, err := nilql.Encrypt(key, p)
	require.NoError(t, err)
	return nilql.AllotmentOf(ct)
}

func TestAllotWithoutMarkers(t *testing.T) {
	doc := document.Map{
		"id":   document.Int(0),
		"tags": document.List{document.String("a"), document.Bool(true), document.Null{}},
	}
	out, err := nilql.Allot(doc)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, cmp.Diff(nilql.Document(doc), out[0]))

	out, err = nilql.Allot(document.Int(3))
	require.NoError(t, err)
	assert.Equal(t, []nilql.Document{document.Int(3)}, out)
}

func TestAllotDistributesShares(t *testing.T) {
	doc := document.Map{
		"id":  document.Int(0),
		"age": document.Allotment(document.List{document.Int(1), document.Int(2), document.Int(3)}),
		"dat": document.Map{
			"loc": document.Allotment(document.List{document.String("x"), document.String("y"), document.String("z")}),
		},
	}
	out, err := nilql.Allot(doc)
	require.NoError(t, err)
	require.Len(t, out, 3)

	want := []nilql.Document{
		document.Map{"id": document.Int(0), "age": document.Share(document.Int(1)), "dat": document.Map{"loc": document.Share(document.String("x"))}},
		document.Map{"id": document.Int(0), "age": document.Share(document.Int(2)), "dat": document.Map{"loc": document.Share(document.String("y"))}},
		document.Map{"id": document.Int(0), "age": document.Share(document.Int(3)), "dat": document.Map{"loc": document.Share(document.String("z"))}},
	}
	assert.Empty(t, cmp.Diff(want, out))
}

func TestAllotNestedShareLists(t *testing.T) {
	doc := document.Allotment(document.List{
		document.List{document.String("a1"), document.String("a2")},
		document.List{document.String("b1"), document.String("b2")},
	})
	out, err := nilql.Allot(doc)
	require.NoError(t, err)

	want := []nilql.Document{
		document.Share(document.List{document.String("a1"), document.String("b1")}),
		document.Share(document.List{document.String("a2"), document.String("b2")}),
	}
	assert.Empty(t, cmp.Diff(want, out))
}

func TestAllotErrors(t *testing.T) {
	deep := nilql.Document(document.Int(1))
	for i := 0; i < nilql.MaxDepth+10; i++ {
		deep = document.List{deep}
	}

	tests := []struct {
		name string
		doc  nilql.Document
		msg  string
	}{
		{
			name: "extra key beside marker",
			doc: document.Map{
				document.AllotKey: document.List{document.Int(1), document.Int(2)},
				"extra":           document.Int(0),
			},
			msg: "allotment must only have one key",
		},
		{
			name: "inconsistent list",
			doc: document.List{
				document.Allotment(document.List{document.Int(1), document.Int(2)}),
				document.Allotment(document.List{document.Int(1), document.Int(2), document.Int(3)}),
			},
			msg: "number of shares is not consistent",
		},
		{
			name: "inconsistent map",
			doc: document.Map{
				"a": document.Allotment(document.List{document.Int(1), document.Int(2)}),
				"b": document.Allotment(document.List{document.Int(1), document.Int(2), document.Int(3)}),
			},
			msg: "number of shares in subdocument is not consistent",
		},
		{
			name: "empty allotment",
			doc:  document.Allotment(document.List{}),
			msg:  "at least one share",
		},
		{
			name: "scalar allotment",
			doc:  document.Allotment(document.Int(1)),
			msg:  "list of shares",
		},
		{
			name: "mixed nested allotment",
			doc:  document.Allotment(document.List{document.List{document.Int(1)}, document.Map{}}),
			msg:  "only lists of shares",
		},
		{
			name: "too deep",
			doc:  deep,
			msg:  "maximum nesting depth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nilql.Allot(tt.doc)
			require.ErrorIs(t, err, nilql.ErrStructure)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestAllotCiphertexts(t *testing.T) {
	sk := generate(t, 3, nilql.Store)
	doc := document.Map{
		"id":  document.Int(0),
		"age": encryptDoc(t, sk, nilql.Integer(23)),
	}
	out, err := nilql.Allot(doc)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, d := range out {
		age, ok := document.Lookup(d, "age")
		require.True(t, ok)
		share, ok := document.Lookup(age, document.ShareKey)
		require.True(t, ok)
		assert.Equal(t, document.KindString, document.KindOf(share))
	}
}
