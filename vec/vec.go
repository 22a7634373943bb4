/*******************************************************************************************[Vec.h]
Copyright (c) 2003-2007, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package vec

import (
	"math"

	"github.com/pkg/errors"
)

// A Vec is an automatically resizable array of T.
// Its zero value is an empty Vec with no storage.
//
// Slots [0, Len()) hold live elements; slots [Len(), Cap()) are vacant and never
// returned to the caller.
// A Vec must not be copied after first use: use CopyTo, MoveTo or Swap.
type Vec[T any] struct {
	noCopy noCopy
	data   []T // len(data) is the capacity. nil iff the capacity is 0.
	sz     int // Number of live elements
}

// noCopy makes go vet's copylocks check report Vecs copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Len returns the number of elements in v.
func (v *Vec[T]) Len() int {
	return v.sz
}

// Cap returns the number of slots currently allocated for v.
func (v *Vec[T]) Cap() int {
	return len(v.data)
}

// Empty is true iff v has no element.
func (v *Vec[T]) Empty() bool {
	return v.sz == 0
}

func (v *Vec[T]) check(i int) {
	if uint(i) >= uint(v.sz) {
		precondition("index %d out of range [0,%d)", i, v.sz)
	}
}

// At returns the ith element of v.
func (v *Vec[T]) At(i int) T {
	v.check(i)
	return v.data[i]
}

// Ref returns a pointer to the ith element of v.
// The pointer is invalidated by any operation that reallocates v.
func (v *Vec[T]) Ref(i int) *T {
	v.check(i)
	return &v.data[i]
}

// Set sets the ith element of v.
func (v *Vec[T]) Set(i int, x T) {
	v.check(i)
	v.data[i] = x
}

// Last returns the last element of v.
func (v *Vec[T]) Last() T {
	v.check(v.sz - 1)
	return v.data[v.sz-1]
}

// LastRef returns a pointer to the last element of v.
func (v *Vec[T]) LastRef() *T {
	v.check(v.sz - 1)
	return &v.data[v.sz-1]
}

// Slice returns a view on the live elements of v.
// It shares v's storage and must not be used after v grows, is moved or is cleared.
func (v *Vec[T]) Slice() []T {
	return v.data[:v.sz:v.sz]
}

// PushZero appends a zero T to v.
func (v *Vec[T]) PushZero() error {
	if v.sz == len(v.data) {
		if err := v.grow(v.sz + 1); err != nil {
			return err
		}
	}
	var zero T
	v.data[v.sz] = zero
	v.sz++
	return nil
}

// Push appends x to v.
func (v *Vec[T]) Push(x T) error {
	if v.sz == len(v.data) {
		if err := v.grow(v.sz + 1); err != nil {
			return err
		}
	}
	v.data[v.sz] = x
	v.sz++
	return nil
}

// PushUnchecked appends x to v, which must have room for it (Len() < Cap()).
func (v *Vec[T]) PushUnchecked(x T) {
	if v.sz >= len(v.data) {
		precondition("unchecked push on full vec (capacity %d)", len(v.data))
	}
	v.data[v.sz] = x
	v.sz++
}

// Pop destroys the last element of v.
func (v *Vec[T]) Pop() {
	if v.sz == 0 {
		precondition("pop on empty vec")
	}
	v.sz--
	destroy(&v.data[v.sz])
}

// Shrink destroys the last k elements of v.
func (v *Vec[T]) Shrink(k int) {
	if k < 0 || k > v.sz {
		precondition("cannot shrink %d elements from vec of size %d", k, v.sz)
	}
	for i := 0; i < k; i++ {
		v.sz--
		destroy(&v.data[v.sz])
	}
}

// ShrinkUnchecked removes the last k elements of v without destroying them.
// It must only be used on types that do not need any cleanup.
func (v *Vec[T]) ShrinkUnchecked(k int) {
	if k < 0 || k > v.sz {
		precondition("cannot shrink %d elements from vec of size %d", k, v.sz)
	}
	v.sz -= k
}

// GrowTo appends zero values to v until it has n elements.
// It does nothing if v already has at least n elements.
func (v *Vec[T]) GrowTo(n int) error {
	if n <= v.sz {
		return nil
	}
	if err := v.grow(n); err != nil {
		return err
	}
	clear(v.data[v.sz:n])
	v.sz = n
	return nil
}

// GrowToPad appends copies of pad to v until it has n elements.
// It does nothing if v already has at least n elements; in particular, existing
// elements are never replaced by pad.
func (v *Vec[T]) GrowToPad(n int, pad T) error {
	if n <= v.sz {
		return nil
	}
	if err := v.grow(n); err != nil {
		return err
	}
	for i := v.sz; i < n; i++ {
		v.data[i] = pad
	}
	v.sz = n
	return nil
}

// Clear destroys all elements of v.
// If dealloc is true, v's storage is released too; otherwise it is kept for later reuse.
// Elements whose type implements NoCleanup are not destroyed one by one.
func (v *Vec[T]) Clear(dealloc bool) {
	if v.data == nil {
		return
	}
	if !skipsCleanup[T]() {
		for i := 0; i < v.sz; i++ {
			destroy(&v.data[i])
		}
	}
	v.sz = 0
	if dealloc {
		v.data = nil
	}
}

// Destroy releases v's elements and storage.
// It makes a *Vec a Destroyer, so nested Vecs are released with their container.
func (v *Vec[T]) Destroy() {
	v.Clear(true)
}

// Resize shrinks or grows v so that it has exactly n elements.
func (v *Vec[T]) Resize(n int) error {
	if n < v.sz {
		v.Shrink(v.sz - n)
		return nil
	}
	return v.GrowTo(n)
}

// Insert appends num zero values to v.
func (v *Vec[T]) Insert(num int) error {
	if num < 0 {
		precondition("cannot insert %d elements", num)
	}
	if num > math.MaxInt-v.sz {
		return errors.Wrapf(ErrAllocationOverflow, "cannot insert %d elements into vec of size %d", num, v.sz)
	}
	return v.GrowTo(v.sz + num)
}
