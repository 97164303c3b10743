package domain

import (
	"strconv"
	"strings"
)

// evidenceRefPrefix prefixes positional fragment references (E1, E2, ...).
const evidenceRefPrefix = "E"

// EvidenceSet is the bounded, ordered collection of fragments handed to the generator.
// The zero value is an empty set.
type EvidenceSet struct {
	fragments []Fragment
}

// NewEvidenceSet creates an evidence set holding a copy of fragments in the given order.
func NewEvidenceSet(fragments ...Fragment) EvidenceSet {
	if len(fragments) == 0 {
		return EvidenceSet{}
	}
	cp := make([]Fragment, len(fragments))
	copy(cp, fragments)
	return EvidenceSet{fragments: cp}
}

// Fragments returns a copy of the fragments in order.
func (e EvidenceSet) Fragments() []Fragment {
	cp := make([]Fragment, len(e.fragments))
	copy(cp, e.fragments)
	return cp
}

// Len returns the number of fragments.
func (e EvidenceSet) Len() int {
	return len(e.fragments)
}

// IsEmpty reports whether the set holds no fragments.
func (e EvidenceSet) IsEmpty() bool {
	return len(e.fragments) == 0
}

// At returns the fragment at position i.
func (e EvidenceSet) At(i int) Fragment {
	return e.fragments[i]
}

// TotalLength returns the summed rune length of all fragment texts.
func (e EvidenceSet) TotalLength() int {
	total := 0
	for i := range e.fragments {
		total += e.fragments[i].Length()
	}
	return total
}

// Ref returns the reference label for the fragment at position i (E1 for i=0).
func (e EvidenceSet) Ref(i int) string {
	return evidenceRefPrefix + strconv.Itoa(i+1)
}

// Lookup resolves a fragment reference to its position.
// Accepts "E2", "e2", "[E2]" and the fragment's chunk ID.
func (e EvidenceSet) Lookup(ref string) (int, bool) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(strings.TrimPrefix(ref, "["), "]")
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, false
	}

	if len(ref) > 1 && strings.EqualFold(ref[:1], evidenceRefPrefix) {
		if n, err := strconv.Atoi(ref[1:]); err == nil {
			if n >= 1 && n <= len(e.fragments) {
				return n - 1, true
			}
			return 0, false
		}
	}

	for i := range e.fragments {
		if e.fragments[i].ChunkID != "" && e.fragments[i].ChunkID == ref {
			return i, true
		}
	}
	return 0, false
}
