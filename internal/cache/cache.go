// Package cache provides content-addressed caching of lint/purify
// results, keyed by a BLAKE2b-256 fingerprint of the source bytes plus a
// canonical CBOR encoding of the Ast metadata and diagnostic set --
// mirroring core/planfmt's Canonicalize/MarshalBinary/blake2b discipline
// for plan hashing, applied here to shellpure's own Ast and Diagnostic
// types instead of opal's Plan.
package cache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// Key is an alias for ast.Fingerprint, the content-addressed digest
// internal/cache is responsible for computing and filling into
// Ast.Meta.Fingerprint.
type Key = ast.Fingerprint

// KeyString renders a Key as the same "blake2b:<hex>" form
// core/planfmt.Plan.Hash uses.
func KeyString(k Key) string {
	return fmt.Sprintf("blake2b:%x", k[:])
}

// Fingerprint hashes source with BLAKE2b-256, producing the value Stamp
// fills into a freshly-parsed Ast's Meta.Fingerprint.
func Fingerprint(source []byte) (Key, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Key{}, fmt.Errorf("cache: create hasher: %w", err)
	}
	if _, err := h.Write(source); err != nil {
		return Key{}, fmt.Errorf("cache: hash source: %w", err)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k, nil
}

// Stamp computes source's fingerprint and returns an Ast with
// Meta.Fingerprint filled in, leaving every other field untouched. The
// parser itself never hashes (parsing large inputs shouldn't pay for a
// cache key nobody asked for); a caller that wants incremental caching
// calls Stamp once after a successful Parse.
func Stamp(a *ast.Ast, source []byte) (*ast.Ast, error) {
	key, err := Fingerprint(source)
	if err != nil {
		return nil, err
	}
	out := a.Clone()
	out.Meta.Fingerprint = key
	return out, nil
}

// Entry is one cached lint result: the line count the Ast was parsed
// with (a cheap staleness check independent of the full fingerprint) and
// the diagnostics produced for it.
type Entry struct {
	LineCount   int               `cbor:"line_count"`
	Diagnostics []diag.Diagnostic `cbor:"diagnostics"`
}

// Encode canonically CBOR-encodes an Entry, deterministic across runs
// the same way core/planfmt.CanonicalPlan.MarshalBinary is: sorted map
// keys, fixed integer widths, no indeterminate-length items.
func Encode(e Entry) ([]byte, error) {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cache: build canonical CBOR mode: %w", err)
	}
	data, err := mode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("cache: encode entry: %w", err)
	}
	return data, nil
}

// Decode reverses Encode.
func Decode(data []byte) (Entry, error) {
	var e Entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("cache: decode entry: %w", err)
	}
	return e, nil
}

// EntryFor builds the Entry a successful lint of a would produce,
// ready for Encode.
func EntryFor(a *ast.Ast, diagnostics []diag.Diagnostic) Entry {
	return Entry{LineCount: a.Meta.LineCount, Diagnostics: diagnostics}
}

// Store is an in-memory content cache keyed by Fingerprint, the
// interface a front end backs with a file or directory (per §5, file
// I/O is a front-end concern, not something the core performs itself).
type Store struct {
	entries map[Key][]byte
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[Key][]byte)}
}

// Get returns the cached entry for key, if present.
func (s *Store) Get(key Key) (Entry, bool) {
	data, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	e, err := Decode(data)
	if err != nil {
		return Entry{}, false
	}
	return e, true
}

// Put stores entry under key, replacing any prior value.
func (s *Store) Put(key Key, entry Entry) error {
	data, err := Encode(entry)
	if err != nil {
		return err
	}
	s.entries[key] = data
	return nil
}
