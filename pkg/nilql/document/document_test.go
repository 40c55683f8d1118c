package document_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nillion/nilql-go/pkg/nilql/document"
)

func TestParseAndMarshal(t *testing.T) {
	doc, err := document.Parse([]byte(`{"id": 0, "name": "x", "ok": true, "none": null,
		"tags": [1, "two", false], "age": {"$allot": [1, 2, 3]}}`))
	require.NoError(t, err)

	want := document.Map{
		"id":   document.Int(0),
		"name": document.String("x"),
		"ok":   document.Bool(true),
		"none": document.Null{},
		"tags": document.List{document.Int(1), document.String("two"), document.Bool(false)},
		"age":  document.Allotment(document.List{document.Int(1), document.Int(2), document.Int(3)}),
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("parsed document mismatch (-want +got):\n%s", diff)
	}

	out, err := document.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":{"$allot":[1,2,3]},"id":0,"name":"x","none":null,"ok":true,"tags":[1,"two",false]}`, string(out))
}

func TestParseLargeUnsignedShare(t *testing.T) {
	doc, err := document.Parse([]byte(`[4294967295, 0]`))
	require.NoError(t, err)
	assert.Equal(t, document.List{document.Int(4294967295), document.Int(0)}, doc)
}

func TestParseRejectsFloats(t *testing.T) {
	_, err := document.Parse([]byte(`{"x": 1.23}`))
	require.ErrorIs(t, err, document.ErrUnsupported)

	_, err = document.FromValue(1.5)
	require.ErrorIs(t, err, document.ErrUnsupported)

	_, err = document.FromValue(struct{}{})
	require.ErrorIs(t, err, document.ErrUnsupported)
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := document.Parse([]byte(`1 2`))
	require.Error(t, err)
}

func TestFromValueNative(t *testing.T) {
	doc, err := document.FromValue(map[string]any{
		"a": []any{1, int64(2), uint32(3), "s"},
		"b": nil,
		"c": []string{"x", "y"},
	})
	require.NoError(t, err)
	assert.True(t, document.Equal(doc, document.Map{
		"a": document.List{document.Int(1), document.Int(2), document.Int(3), document.String("s")},
		"b": document.Null{},
		"c": document.List{document.String("x"), document.String("y")},
	}))
}

func TestEqual(t *testing.T) {
	a := document.Map{"x": document.List{document.Int(1), nil}}
	b := document.Map{"x": document.List{document.Int(1), document.Null{}}}
	assert.True(t, document.Equal(a, b))
	assert.False(t, document.Equal(a, document.Map{"x": document.List{document.Int(1)}}))
	assert.False(t, document.Equal(document.Int(1), document.String("1")))
	assert.False(t, document.Equal(document.Map{"a": document.Int(1)}, document.Map{"b": document.Int(1)}))
}

func TestMarkers(t *testing.T) {
	v, ok := document.Lookup(document.Share(document.String("s")), document.ShareKey)
	require.True(t, ok)
	assert.Equal(t, document.String("s"), v)

	_, ok = document.Lookup(document.List{}, document.ShareKey)
	assert.False(t, ok)

	assert.True(t, document.IsScalar(document.Int(1)))
	assert.True(t, document.IsScalar(nil))
	assert.False(t, document.IsScalar(document.List{}))
	assert.Equal(t, []string{"a", "b"}, document.Map{"b": nil, "a": nil}.Keys())
	assert.True(t, document.SameKeys(document.Map{"a": nil}, document.Map{"a": document.Int(1)}))
}
