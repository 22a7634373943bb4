package vec

// A Destroyer is an element type that must release resources when it is removed from a Vec.
// The capability is looked up on *T: Destroy is called on the element in place.
type Destroyer interface {
	Destroy()
}

// NoCleanup is implemented by element types that need no destruction when a Vec is
// cleared in bulk, typically fixed-layout records owning no resource (watch list entries,
// clause headers...).
// Clear then skips its destruction loop. Flagging a type that does need cleanup is a bug
// the Vec cannot detect.
type NoCleanup interface {
	NoCleanup()
}

// copier is implemented by element types that must be deep-copied by CopyTo, such as Vec itself.
type copier[T any] interface {
	CopyTo(dst *T) error
}

func skipsCleanup[T any]() bool {
	_, ok := any((*T)(nil)).(NoCleanup)
	return ok
}

func deepCopies[T any]() bool {
	_, ok := any((*T)(nil)).(copier[T])
	return ok
}

// destroy destroys the element pointed to by p and leaves a zero value in its slot.
func destroy[T any](p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*p = zero
}
