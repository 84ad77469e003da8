// Package registry holds the ordered version candidates of every logical
// operation.
//
// A CandidateSet lists the concrete struct versions an operation may use,
// newest first. The dispatcher walks a set in order until the driver
// accepts one. Sets are built once from declarative data and never change.
package registry

import (
	"fmt"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
)

// OperationKind names a logical operation, such as "memory-info".
type OperationKind string

// Entry is the type-erased view of a CandidateSet held by a Registry.
type Entry interface {
	Kind() OperationKind
	Layouts() []*marshal.Layout
}

// CandidateSet is an immutable ordered list of constructors for one
// operation, newest version first.
type CandidateSet[T marshal.Struct] struct {
	kind    OperationKind
	ctors   []func() T
	layouts []*marshal.Layout
}

// Candidates builds a set. Every constructor must return a value with a
// layout, and versions must be strictly descending.
func Candidates[T marshal.Struct](kind OperationKind, ctors ...func() T) (CandidateSet[T], error) {
	if kind == "" {
		return CandidateSet[T]{}, errors.Registration("?", "operation kind is empty")
	}
	if len(ctors) == 0 {
		return CandidateSet[T]{}, errors.Registration(string(kind), "no candidates")
	}

	layouts := make([]*marshal.Layout, len(ctors))
	for i, ctor := range ctors {
		if ctor == nil {
			return CandidateSet[T]{}, errors.Registration(string(kind), fmt.Sprintf("candidate %d has no constructor", i))
		}
		l := ctor().Layout()
		if l == nil {
			return CandidateSet[T]{}, errors.Registration(string(kind), fmt.Sprintf("candidate %d has no layout", i))
		}
		if i > 0 && l.Version >= layouts[i-1].Version {
			return CandidateSet[T]{}, errors.Registration(string(kind),
				fmt.Sprintf("%s must be older than %s", l.Name, layouts[i-1].Name))
		}
		layouts[i] = l
	}

	return CandidateSet[T]{
		kind:    kind,
		ctors:   append([]func() T(nil), ctors...),
		layouts: layouts,
	}, nil
}

// MustCandidates is like Candidates but panics on error.
func MustCandidates[T marshal.Struct](kind OperationKind, ctors ...func() T) CandidateSet[T] {
	s, err := Candidates(kind, ctors...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s CandidateSet[T]) Kind() OperationKind { return s.kind }

// Len is the number of candidates.
func (s CandidateSet[T]) Len() int { return len(s.ctors) }

// Layouts returns the candidate layouts, newest first.
func (s CandidateSet[T]) Layouts() []*marshal.Layout {
	return append([]*marshal.Layout(nil), s.layouts...)
}

// Candidate returns the constructor and layout at position i.
func (s CandidateSet[T]) Candidate(i int) (func() T, *marshal.Layout) {
	return s.ctors[i], s.layouts[i]
}

// Newest constructs a value of the newest candidate.
func (s CandidateSet[T]) Newest() T {
	return s.ctors[0]()
}

// Registry maps operation kinds to candidate sets.
type Registry struct {
	sets  map[OperationKind]Entry
	order []OperationKind
}

// New builds a registry. Duplicate kinds are rejected.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{sets: make(map[OperationKind]Entry, len(entries))}
	for _, e := range entries {
		if e == nil || e.Kind() == "" {
			return nil, errors.Registration("?", "entry has no operation kind")
		}
		if _, dup := r.sets[e.Kind()]; dup {
			return nil, errors.Registration(string(e.Kind()), "registered twice")
		}
		r.sets[e.Kind()] = e
		r.order = append(r.order, e.Kind())
	}
	return r, nil
}

// Candidates returns the set registered for kind.
func (r *Registry) Candidates(kind OperationKind) (Entry, error) {
	if r != nil {
		if e, ok := r.sets[kind]; ok {
			return e, nil
		}
	}
	return nil, errors.UnsupportedOperation(string(kind), 0)
}

// Kinds returns registered kinds in registration order.
func (r *Registry) Kinds() []OperationKind {
	return append([]OperationKind(nil), r.order...)
}

// Layouts returns every registered layout, grouped by kind.
func (r *Registry) Layouts() []*marshal.Layout {
	var out []*marshal.Layout
	for _, k := range r.order {
		out = append(out, r.sets[k].Layouts()...)
	}
	return out
}

// Set returns the typed candidate set for kind. A missing set or one of a
// different value type is an unsupported operation.
func Set[T marshal.Struct](r *Registry, kind OperationKind) (CandidateSet[T], error) {
	e, err := r.Candidates(kind)
	if err != nil {
		return CandidateSet[T]{}, err
	}
	s, ok := e.(CandidateSet[T])
	if !ok {
		return CandidateSet[T]{}, errors.New(errors.PhaseRegistry, errors.KindUnsupported).
			Detail("operation %q is registered with a different value type", kind).Build()
	}
	return s, nil
}
