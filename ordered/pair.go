package ordered

import "cmp"

// Pair is an unordered pair stored in canonical form: First <= Second. Two
// pairs built from the same elements compare equal whatever the argument
// order, so a Pair can key a map of symmetric relations.
type Pair[T cmp.Ordered] struct {
	First, Second T
}

// MakePair returns the canonical pair of a and b.
func MakePair[T cmp.Ordered](a, b T) Pair[T] {
	if b < a {
		return Pair[T]{First: b, Second: a}
	}
	return Pair[T]{First: a, Second: b}
}

// Contains reports whether v is one of the two elements.
func (p Pair[T]) Contains(v T) bool {
	return p.First == v || p.Second == v
}

// Other returns the element of p that is not v. v must be in p.
func (p Pair[T]) Other(v T) T {
	if p.First == v {
		return p.Second
	}
	return p.First
}
