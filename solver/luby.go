package solver

// luby returns the ith term (starting at 1) of the Luby sequence:
// 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...
func luby(i uint) uint {
	x := i - 1
	// Find the finite subsequence that contains index x, and its size.
	size, seq := uint(1), uint(0)
	for size < x+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) >> 1
		seq--
		x = x % size
	}
	return 1 << seq
}
