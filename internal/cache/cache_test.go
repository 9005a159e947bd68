package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
	"github.com/aledsdavies/shellpure/internal/parser"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	a, err := Fingerprint([]byte("mkdir /x"))
	require.NoError(t, err)
	b, err := Fingerprint([]byte("mkdir /x"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFingerprintDiffersOnDifferentSource(t *testing.T) {
	a, err := Fingerprint([]byte("mkdir /x"))
	require.NoError(t, err)
	b, err := Fingerprint([]byte("mkdir /y"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestStampFillsFingerprintWithoutMutatingInput(t *testing.T) {
	src := []byte("mkdir /x\n")
	a, err := parser.Parse(src)
	require.NoError(t, err)
	require.Equal(t, ast.Fingerprint{}, a.Meta.Fingerprint)

	stamped, err := Stamp(a, src)
	require.NoError(t, err)
	require.NotEqual(t, ast.Fingerprint{}, stamped.Meta.Fingerprint)
	require.Equal(t, ast.Fingerprint{}, a.Meta.Fingerprint)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entry := Entry{
		LineCount: 3,
		Diagnostics: []diag.Diagnostic{
			{Code: "SEC001", Severity: diag.SevError, Message: "eval injection"},
		},
	}
	data, err := Encode(entry)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, entry, decoded)
}

func TestStoreGetPutRoundTrip(t *testing.T) {
	store := NewStore()
	key, err := Fingerprint([]byte("mkdir /x"))
	require.NoError(t, err)

	_, ok := store.Get(key)
	require.False(t, ok)

	entry := Entry{LineCount: 1}
	require.NoError(t, store.Put(key, entry))

	got, ok := store.Get(key)
	require.True(t, ok)
	require.Equal(t, entry, got)
}
