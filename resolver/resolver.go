package resolver

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/nvapi/errors"
)

// Handle is a resolved entry point. It never changes once resolved.
type Handle struct {
	Name string
	Addr uintptr
	ID   FunctionID
}

// Lookup maps an interface id to an entry point address without calling
// into the API. A zero address means the driver does not export the id.
type Lookup interface {
	QueryInterface(id uint32) uintptr
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(id uint32) uintptr

func (f LookupFunc) QueryInterface(id uint32) uintptr { return f(id) }

type entry struct {
	err    error
	handle Handle
	once   sync.Once
}

// Resolver caches entry point lookups for the life of the process. Both
// hits and misses are cached, and concurrent first resolution of one id
// performs a single lookup.
//
// Resolver is thread-safe.
type Resolver struct {
	lookup  Lookup
	entries map[FunctionID]*entry
	lookups atomic.Uint64
	mu      sync.RWMutex
}

// New creates a resolver backed by lookup.
func New(lookup Lookup) *Resolver {
	return &Resolver{
		lookup:  lookup,
		entries: make(map[FunctionID]*entry),
	}
}

// Resolve returns the handle for id, or an EntryPointNotFound error when the
// driver does not export it.
func (r *Resolver) Resolve(id FunctionID) (Handle, error) {
	e := r.entry(id)
	e.once.Do(func() {
		r.lookups.Add(1)
		addr := r.lookup.QueryInterface(uint32(id))
		if addr == 0 {
			e.err = errors.EntryPointNotFound(id.String(), uint32(id))
			Logger().Debug("entry point not exported",
				zap.String("function", id.String()),
				zap.Uint32("id", uint32(id)))
			return
		}
		e.handle = Handle{ID: id, Name: id.String(), Addr: addr}
		Logger().Debug("entry point resolved",
			zap.String("function", id.String()),
			zap.Uintptr("addr", addr))
	})
	return e.handle, e.err
}

func (r *Resolver) entry(id FunctionID) *entry {
	r.mu.RLock()
	e := r.entries[id]
	r.mu.RUnlock()
	if e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e = r.entries[id]; e == nil {
		e = &entry{}
		r.entries[id] = e
	}
	return e
}

// Has reports whether id resolves to an entry point.
func (r *Resolver) Has(id FunctionID) bool {
	_, err := r.Resolve(id)
	return err == nil
}

// Missing resolves every id and reports the ones the driver lacks as a
// MissingEntryPointsError, or nil when all are present.
func (r *Resolver) Missing(ids ...FunctionID) error {
	var missing []string
	for _, id := range ids {
		if !r.Has(id) {
			missing = append(missing, id.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.NewMissingEntryPointsError(missing)
}

// Stats describes resolver cache activity.
type Stats struct {
	Lookups uint64
	Cached  int
}

// Stats reports lookups performed and the number of cached ids.
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Lookups: r.lookups.Load(), Cached: len(r.entries)}
}
