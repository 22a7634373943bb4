package vec

// CopyTo makes dst an independent copy of v. dst's previous elements are destroyed.
// Elements are copied by assignment, except for types providing their own CopyTo
// method (such as Vec), which are deep-copied.
// If dst cannot be grown to v's size, dst is left untouched. A failure while deep-copying
// an element leaves dst holding the elements copied so far.
func (v *Vec[T]) CopyTo(dst *Vec[T]) error {
	if dst == v {
		return nil
	}
	if err := dst.Reserve(v.sz); err != nil {
		return err
	}
	dst.Clear(false)
	if !deepCopies[T]() {
		copy(dst.data, v.data[:v.sz])
		dst.sz = v.sz
		return nil
	}
	for i := 0; i < v.sz; i++ {
		var zero T
		dst.data[i] = zero
		if err := any(&v.data[i]).(copier[T]).CopyTo(&dst.data[i]); err != nil {
			destroy(&dst.data[i])
			return err
		}
		dst.sz++
	}
	return nil
}

// MoveTo transfers v's storage and elements to dst, whose previous content is destroyed.
// v is empty afterwards, with no storage.
func (v *Vec[T]) MoveTo(dst *Vec[T]) {
	if dst == v {
		return
	}
	dst.Clear(true)
	dst.data, dst.sz = v.data, v.sz
	v.data, v.sz = nil, 0
}

// Swap exchanges the content of v and other.
func (v *Vec[T]) Swap(other *Vec[T]) {
	v.data, other.data = other.data, v.data
	v.sz, other.sz = other.sz, v.sz
}
