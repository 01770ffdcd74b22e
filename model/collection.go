package model

import "sort"

// Collection is the tagged configuration shape consumed by the fold
// expander: either a case-partitioned mapping or a flat list. The variant is
// resolved here, once, into a uniform case-keyed view; a flat collection
// presents a single absent case (the zero ID), so downstream code never
// branches on the shape again.
type Collection[T Clonable[T]] struct {
	cases       map[string][]Named[T]
	flat        []Named[T]
	partitioned bool
}

// Cases builds a case-partitioned collection.
func Cases[T Clonable[T]](m map[string][]Named[T]) Collection[T] {
	return Collection[T]{cases: m, partitioned: true}
}

// Flat builds an unpartitioned collection.
func Flat[T Clonable[T]](list []Named[T]) Collection[T] {
	return Collection[T]{flat: list}
}

// MirrorCases builds an empty collection sharing another collection's case
// structure. Used when a layer declares no preprocessing: each case still
// needs its (empty) transformer cache entry.
func MirrorCases[T Clonable[T]](ids []ID, partitioned bool) Collection[T] {
	if !partitioned {
		return Flat[T](nil)
	}
	m := make(map[string][]Named[T], len(ids))
	for _, id := range ids {
		m[id.Base] = nil
	}
	return Cases(m)
}

// Partitioned reports whether the collection was declared case-partitioned.
func (c Collection[T]) Partitioned() bool {
	return c.partitioned
}

// CaseIDs returns the case identifiers in sorted order. A flat collection
// reports a single absent case.
func (c Collection[T]) CaseIDs() []ID {
	if !c.partitioned {
		return []ID{{}}
	}
	keys := make([]string, 0, len(c.cases))
	for k := range c.cases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ids := make([]ID, len(keys))
	for i, k := range keys {
		ids[i] = Name(k)
	}
	return ids
}

// Members returns the declared instances for a case, in declaration order.
func (c Collection[T]) Members(caseID ID) []Named[T] {
	if !c.partitioned {
		return c.flat
	}
	return c.cases[caseID.Base]
}

// Len returns the total number of instances across all cases.
func (c Collection[T]) Len() int {
	if !c.partitioned {
		return len(c.flat)
	}
	n := 0
	for _, members := range c.cases {
		n += len(members)
	}
	return n
}
