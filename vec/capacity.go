package vec

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
)

// MaxCapacity is the maximum number of slots a Vec can hold.
const MaxCapacity = math.MaxUint32

// capLimit is MaxCapacity, or less on platforms where an int cannot hold it.
const capLimit = min(uint64(MaxCapacity), uint64(math.MaxInt))

// nextCapacity returns the capacity a Vec of capacity cur must be given to hold need elements.
// need must be > cur.
func nextCapacity(cur, need uint64) (uint64, error) {
	// Grow by approximately 3/2, but at least enough to hold need elements.
	add := max((need-cur+1)&^1, (cur>>1+2)&^1)
	capa := cur + add
	if capa > capLimit {
		return 0, errors.Wrapf(ErrAllocationOverflow, "cannot grow from %d to %d slots", cur, need)
	}
	// Only a few distinct sizes are ever requested: this avoids memory fragmentation.
	size := uint64(2)
	for size < capa {
		size *= 2
	}
	if size*2/3 > capa {
		size = size * 2 / 3
	}
	if size > capLimit { // capa fits, so capLimit holds it
		size = capLimit
	}
	return size, nil
}

// reallocate returns a new storage block of capa slots, whose first live slots are
// relocated from old. The remaining slots are zero.
// Runtime allocation panics are returned as ErrAllocationFailure.
func reallocate[T any](old []T, live, capa int) (data []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			data = nil
			err = errors.Wrapf(ErrAllocationFailure, "cannot allocate %d slots: %v", capa, rerr)
		}
	}()
	data = make([]T, capa)
	copy(data, old[:live])
	return data, nil
}

// grow makes room for at least need elements in v.
// v is only modified if the allocation succeeds.
func (v *Vec[T]) grow(need int) error {
	if need <= len(v.data) {
		return nil
	}
	capa, err := nextCapacity(uint64(len(v.data)), uint64(need))
	if err != nil {
		return err
	}
	data, err := reallocate(v.data, v.sz, int(capa))
	if err != nil {
		return err
	}
	v.data = data
	return nil
}

// Reserve makes sure v can hold n elements without reallocating.
func (v *Vec[T]) Reserve(n int) error {
	return v.grow(n)
}

// ShrinkToFit reallocates v so that its capacity is exactly its size, releasing
// its storage altogether if v is empty.
// If the smaller block cannot be allocated, v keeps its current storage.
func (v *Vec[T]) ShrinkToFit() {
	if v.sz == 0 {
		v.data = nil
		return
	}
	if v.sz == len(v.data) {
		return
	}
	data, err := reallocate(v.data, v.sz, v.sz)
	if err != nil {
		return
	}
	v.data = data
}
