package combat

import (
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// SkillRecord is a skill the combatant knows.
type SkillRecord struct {
	ID            uint16
	Level         uint16
	Experience    uint32
	PreviousLevel uint16 // 轉生降級前的等級，0 表示沒有
}

// ProficiencyRecord is a weapon proficiency keyed by weapon type.
type ProficiencyRecord struct {
	ID            uint16
	Level         uint16
	Experience    uint32
	PreviousLevel uint16
}

// recordMap is an id-keyed record set shared by the tick driver and the
// request path. All reads and read-modify-writes happen under its lock.
type recordMap[T any] struct {
	mu deadlock.RWMutex
	m  map[uint16]T
}

func newRecordMap[T any]() *recordMap[T] {
	return &recordMap[T]{m: make(map[uint16]T)}
}

func (r *recordMap[T]) get(id uint16) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[id]
	return v, ok
}

func (r *recordMap[T]) contains(id uint16) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[id]
	return ok
}

// putIfAbsent inserts v unless id is already present.
func (r *recordMap[T]) putIfAbsent(id uint16, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; ok {
		return false
	}
	r.m[id] = v
	return true
}

func (r *recordMap[T]) set(id uint16, v T) {
	r.mu.Lock()
	r.m[id] = v
	r.mu.Unlock()
}

func (r *recordMap[T]) remove(id uint16) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	delete(r.m, id)
	return v, ok
}

// update runs fn on a copy of the record and stores the result when fn
// returns true. Returns the stored record and whether the id existed.
func (r *recordMap[T]) update(id uint16, fn func(*T) bool) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok {
		return v, false
	}
	if fn(&v) {
		r.m[id] = v
	}
	return v, true
}

// snapshot returns all records ordered by id.
func (r *recordMap[T]) snapshot() []T {
	r.mu.RLock()
	ids := make([]int, 0, len(r.m))
	for id := range r.m {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.m[uint16(id)])
	}
	r.mu.RUnlock()
	return out
}

func (r *recordMap[T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}
