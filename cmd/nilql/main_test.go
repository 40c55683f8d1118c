package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nillion/nilql-go/pkg/nilql"
)

// run executes the command tree with args and stdin, returning stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func TestKeygenEncryptDecrypt(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, nodes := range []string{"1", "3"} {
		mustRun(t, "", "keygen", "--nodes", nodes, "--op", "store", "--out", "sk.json")

		data, err := os.ReadFile("sk.json")
		require.NoError(t, err)
		sk, err := nilql.LoadSecretKey(data)
		require.NoError(t, err)
		assert.Equal(t, nilql.Store, sk.Operation())

		ct := mustRun(t, "", "encrypt", "--key", "sk.json", "--value", "hello", "--string")
		got := mustRun(t, ct, "decrypt", "--key", "sk.json")
		assert.JSONEq(t, `"hello"`, got)

		ct = mustRun(t, "", "encrypt", "--key", "sk.json", "--value=-42")
		got = mustRun(t, ct, "decrypt", "--key", "sk.json")
		assert.JSONEq(t, `-42`, got)
	}
}

func TestEncryptBatchInput(t *testing.T) {
	t.Chdir(t.TempDir())
	mustRun(t, "", "keygen", "--nodes", "2", "--op", "sum", "--out", "sk.json")

	out := mustRun(t, `[1, 2, 3]`, "encrypt", "--key", "sk.json")
	var cts []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &cts))
	require.Len(t, cts, 3)

	got := mustRun(t, string(cts[2]), "decrypt", "--key", "sk.json")
	assert.JSONEq(t, `3`, got)

	_, err := run(t, `["x"]`, "encrypt", "--key", "sk.json")
	require.ErrorIs(t, err, nilql.ErrRange)

	_, err = run(t, `{"a": 1}`, "encrypt", "--key", "sk.json")
	require.Error(t, err)
}

func TestAllotUnify(t *testing.T) {
	t.Chdir(t.TempDir())
	mustRun(t, "", "keygen", "--nodes", "3", "--op", "store", "--out", "sk.json")

	ct := mustRun(t, "", "encrypt", "--key", "sk.json", "--value", "23")
	doc := `{"id": 0, "age": {"$allot": ` + strings.TrimSpace(ct) + `}}`

	shares := mustRun(t, doc, "allot")
	var parts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(shares), &parts))
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.Contains(t, p["age"], "$share")
	}

	got := mustRun(t, shares, "unify", "--key", "sk.json")
	assert.JSONEq(t, `{"id": 0, "age": 23}`, got)
}

func TestPubkey(t *testing.T) {
	t.Chdir(t.TempDir())

	// Full-size Paillier generation.
	if testing.Short() {
		t.Skip("skipping key generation in short mode")
	}
	mustRun(t, "", "keygen", "--nodes", "1", "--op", "sum", "--out", "sk.json")
	mustRun(t, "", "pubkey", "--key", "sk.json", "--out", "pk.json")

	ct := mustRun(t, "", "encrypt", "--key", "pk.json", "--value", "7")
	got := mustRun(t, ct, "decrypt", "--key", "sk.json")
	assert.JSONEq(t, `7`, got)

	_, err := run(t, "", "pubkey", "--key", "pk.json")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("cluster.yaml", []byte("cluster:\n  nodes: [{id: a}, {id: b}]\noperation: match\n"), 0o600))

	mustRun(t, "", "--config", "cluster.yaml", "keygen", "--out", "sk.json")
	data, err := os.ReadFile("sk.json")
	require.NoError(t, err)
	sk, err := nilql.LoadSecretKey(data)
	require.NoError(t, err)
	assert.Equal(t, nilql.Match, sk.Operation())
	assert.Equal(t, 2, sk.NodeCount())
	assert.Equal(t, "a", sk.Cluster().Nodes[0].ID)

	_, err = run(t, "", "--config", "missing.yaml", "version")
	require.Error(t, err)
	_, err = run(t, "", "--log-level", "loud", "version")
	require.Error(t, err)
}

func TestPathsStayInWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "", "keygen", "--nodes", "1", "--op", "store", "--out", "../sk.json")
	require.Error(t, err)
	_, err = run(t, "", "decrypt", "--key", "../sk.json")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "", "version")
	assert.Equal(t, nilql.BuildVersion()+"\n", out)
}
