/*
Package vec provides Vec, the growable array used by every hot loop of the solver:
clause storage, assignment trails, watch lists and learned-clause buffers.

A Vec differs from a plain slice in a few ways that matter in a SAT solver:

  - its capacity grows according to its own policy (roughly 3/2, quantized to powers of two
    or two thirds of a power of two), so that the number of distinct block sizes stays small;
  - elements are constructed and destroyed explicitly: growing writes zero values into new
    slots, shrinking destroys the removed elements (calling Destroy on types implementing
    Destroyer) unless the unchecked variant is used;
  - it is never copied implicitly. CopyTo duplicates, MoveTo transfers ownership in O(1),
    Swap exchanges two Vecs in O(1);
  - element types can declare, by implementing NoCleanup, that a bulk Clear does not need to
    destroy them one by one.

Growth failures are reported as errors (ErrAllocationOverflow, ErrAllocationFailure) and leave
the Vec untouched. Misuse (popping an empty Vec, indexing out of range, pushing without room
through PushUnchecked...) is a programming error and panics with an error wrapping
ErrPrecondition.

The zero value is an empty Vec, ready to use:

	var trail vec.Vec[Lit]
	if err := trail.Reserve(nbVars); err != nil {
		return err
	}
	trail.PushUnchecked(lit)

A Vec is not safe for concurrent use.
*/
package vec
