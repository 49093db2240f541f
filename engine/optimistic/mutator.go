// Package optimistic applies speculative state changes before a remote call confirms
// them, and restores the captured previous value if the call fails.
package optimistic

// Collection is keyed storage the mutator writes through. Store reports false when the
// key is gone, so confirm and rollback on a removed entry are no-ops.
type Collection[T any] interface {
	Lookup(key string) (T, bool)
	Store(key string, v T) bool
}

// Lens reads and writes one field of T.
type Lens[T, V any] struct {
	Get func(T) V
	Set func(T, V) T
}

// Pending is the record kept for the duration of one mutation.
type Pending[V any] struct {
	Key        string
	Previous   V
	Optimistic V
	ok         bool
}

// Applied reports whether Apply found the key.
func (p Pending[V]) Applied() bool { return p.ok }

// Mutator performs apply, confirm and rollback for one field.
type Mutator[T, V any] struct {
	Lens Lens[T, V]
}

// New returns a mutator for the field reached through get and set.
func New[T, V any](get func(T) V, set func(T, V) T) Mutator[T, V] {
	return Mutator[T, V]{Lens: Lens[T, V]{Get: get, Set: set}}
}

// Apply captures the current value under key, writes next(current) and returns the
// pending record. The capture happens synchronously, before any remote call starts.
func (m Mutator[T, V]) Apply(c Collection[T], key string, next func(V) V) Pending[V] {
	cur, ok := c.Lookup(key)
	if !ok {
		return Pending[V]{Key: key}
	}
	prev := m.Lens.Get(cur)
	opt := next(prev)
	c.Store(key, m.Lens.Set(cur, opt))
	return Pending[V]{Key: key, Previous: prev, Optimistic: opt, ok: true}
}

// Confirm overwrites the optimistic value with reconcile(pending). Reconcile receives
// the pending record so it can rebuild derived fields from Previous when the
// authoritative value disagrees with the guess.
func (m Mutator[T, V]) Confirm(c Collection[T], p Pending[V], reconcile func(Pending[V]) V) bool {
	if !p.ok {
		return false
	}
	cur, ok := c.Lookup(p.Key)
	if !ok {
		return false
	}
	return c.Store(p.Key, m.Lens.Set(cur, reconcile(p)))
}

// Rollback restores exactly the captured previous value.
func (m Mutator[T, V]) Rollback(c Collection[T], p Pending[V]) bool {
	if !p.ok {
		return false
	}
	cur, ok := c.Lookup(p.Key)
	if !ok {
		return false
	}
	return c.Store(p.Key, m.Lens.Set(cur, p.Previous))
}
