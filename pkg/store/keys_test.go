package store

import "testing"

func TestHistoryKeysSortLexicographically(t *testing.T) {
	k1 := historyKey("s1", 2)
	k2 := historyKey("s1", 10)
	if string(k1) >= string(k2) {
		t.Fatalf("expected index 2 key to sort before index 10 key: %q vs %q", k1, k2)
	}
}

func TestKeyUpperBoundExcludesPrefixSiblings(t *testing.T) {
	prefix := []byte("sess:")
	upper := keyUpperBound(prefix)
	if string(upper) <= string(prefix) {
		t.Fatalf("expected upper bound %q to sort after prefix %q", upper, prefix)
	}
	// A sibling prefix ("sest:") must fall at or after the upper bound.
	sibling := []byte("sest:")
	if string(sibling) < string(upper) {
		t.Fatalf("sibling prefix %q unexpectedly sorts before upper bound %q", sibling, upper)
	}
}

func TestSessionAndHistoryKeysDoNotCollide(t *testing.T) {
	sk := sessionKey("abc")
	hk := historyKey("abc", 0)
	if string(sk) == string(hk) {
		t.Fatal("session and history keys must use disjoint prefixes")
	}
}
