/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
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

package solver

import "github.com/crillab/satvec/vec"

// A heap implementation with support for decrease/increase key. This is
// strongly inspired from Minisat's mtl/Heap.h.

type queue struct {
	activity *vec.Vec[float64] // Activity of each variable. This is the solver's vec, not a copy.
	content  vec.Vec[int]      // Actual content.
	indices  vec.Vec[int]      // Reverse queue, i.e position of each item in content; -1 means absence.
}

// init fills q with all the variables that have an activity.
func (q *queue) init(activity *vec.Vec[float64]) error {
	q.activity = activity
	n := activity.Len()
	if err := q.content.Reserve(n); err != nil {
		return err
	}
	if err := q.indices.GrowToPad(n, -1); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		q.content.PushUnchecked(i)
		q.indices.Set(i, i)
	}
	for i := n/2 - 1; i >= 0; i-- {
		q.percolateDown(i)
	}
	return nil
}

func (q *queue) lt(i, j int) bool {
	return q.activity.At(i) > q.activity.At(j)
}

// Traversal functions.
func left(i int) int   { return i*2 + 1 }
func right(i int) int  { return (i + 1) * 2 }
func parent(i int) int { return (i - 1) >> 1 }

func (q *queue) percolateUp(i int) {
	content, indices := q.content.Slice(), q.indices.Slice()
	x := content[i]
	p := parent(i)
	for i != 0 && q.lt(x, content[p]) {
		content[i] = content[p]
		indices[content[p]] = i
		i = p
		p = parent(p)
	}
	content[i] = x
	indices[x] = i
}

func (q *queue) percolateDown(i int) {
	content, indices := q.content.Slice(), q.indices.Slice()
	x := content[i]
	for left(i) < len(content) {
		var child int
		if right(i) < len(content) && q.lt(content[right(i)], content[left(i)]) {
			child = right(i)
		} else {
			child = left(i)
		}
		if !q.lt(content[child], x) {
			break
		}
		content[i] = content[child]
		indices[content[i]] = i
		i = child
	}
	content[i] = x
	indices[x] = i
}

func (q *queue) empty() bool { return q.content.Empty() }

func (q *queue) contains(n int) bool {
	return n < q.indices.Len() && q.indices.At(n) >= 0
}

func (q *queue) decrease(n int) {
	q.percolateUp(q.indices.At(n))
}

// insert adds n to the queue. n must not be in the queue already.
func (q *queue) insert(n int) {
	q.indices.Set(n, q.content.Len())
	q.content.PushUnchecked(n)
	q.percolateUp(q.indices.At(n))
}

func (q *queue) removeMin() int {
	x := q.content.At(0)
	last := q.content.Last()
	q.content.Set(0, last)
	q.indices.Set(last, 0)
	q.indices.Set(x, -1)
	q.content.Pop()
	if q.content.Len() > 1 {
		q.percolateDown(0)
	}
	return x
}

// release frees the memory used by q.
func (q *queue) release() {
	q.content.Clear(true)
	q.indices.Clear(true)
}
