// Package store provides ParcelStore, a hand-rolled associative collection
// of parcels keyed by id. It is chained-bucket, not a wrapper around Go's
// built-in map, per spec.md section 4.1: the surface API must not delegate
// to a language-provided hash map, though buckets may be plain slices
// internally. Grounded on the original implementation's HashTable
// (_examples/original_source/hash_table.py), generalized from a
// fixed-size int-keyed table to a string-keyed one whose bucket count is
// chosen at construction. The table does not resize.
package store

import (
	"hash/fnv"
	"log"
	"time"

	"delivery-route-service/internal/domain"
)

type node struct {
	key   string
	value *domain.Parcel
	next  *node
}

// ParcelStore is a chained-bucket hash table mapping parcel id to *Parcel.
// Expected load factor is low (the canonical run has 40 parcels against 40
// buckets); LoadFactor reports the current ratio. The bucket count is fixed
// by New, so a higher load factor only means longer chains.
type ParcelStore struct {
	buckets []*node
	count   int
}

// New constructs a ParcelStore with the given initial bucket count.
// size should be at least 1; the canonical scenario uses 40.
func New(size int) *ParcelStore {
	if size < 1 {
		size = 1
	}
	return &ParcelStore{buckets: make([]*node, size)}
}

func (s *ParcelStore) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(s.buckets)
}

// Insert adds or replaces the parcel stored under id. Parcels are
// rebuildable by reload, so an existing id's value is simply overwritten.
func (s *ParcelStore) Insert(id string, p *domain.Parcel) {
	idx := s.index(id)

	for n := s.buckets[idx]; n != nil; n = n.next {
		if n.key == id {
			n.value = p
			return
		}
	}

	s.buckets[idx] = &node{key: id, value: p, next: s.buckets[idx]}
	s.count++
}

// Lookup returns the parcel stored under id, or nil if absent.
func (s *ParcelStore) Lookup(id string) *domain.Parcel {
	idx := s.index(id)
	for n := s.buckets[idx]; n != nil; n = n.next {
		if n.key == id {
			return n.value
		}
	}
	return nil
}

// UpdateStatus is a thin convenience wrapper around Lookup + mutation.
// A missing id is a no-op, logged rather than propagated as an error —
// the store has no authority to decide whether that's a caller bug.
func (s *ParcelStore) UpdateStatus(id string, status domain.Status, deliveryTime *time.Time) {
	p := s.Lookup(id)
	if p == nil {
		log.Printf("parcel store: update status: parcel %s not found", id)
		return
	}
	p.Status = status
	if deliveryTime != nil {
		p.DeliveryTime = deliveryTime
	}
}

// IterAll calls fn once per stored parcel. Bucket order is stable across
// calls for a given store instance (within a bucket, the most recently
// inserted id comes first; bucket traversal order is index order).
func (s *ParcelStore) IterAll(fn func(id string, p *domain.Parcel)) {
	for _, head := range s.buckets {
		for n := head; n != nil; n = n.next {
			fn(n.key, n.value)
		}
	}
}

// All returns every stored parcel as a slice, in the same stable order
// IterAll visits them.
func (s *ParcelStore) All() []*domain.Parcel {
	out := make([]*domain.Parcel, 0, s.count)
	s.IterAll(func(_ string, p *domain.Parcel) { out = append(out, p) })
	return out
}

// Len reports the number of distinct ids currently stored.
func (s *ParcelStore) Len() int { return s.count }

// LoadFactor is count divided by bucket count, informational only.
func (s *ParcelStore) LoadFactor() float64 {
	return float64(s.count) / float64(len(s.buckets))
}
