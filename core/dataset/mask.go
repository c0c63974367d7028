package dataset

// Mask is a per-row boolean vector used to combine column predicates before
// a Dataset is narrowed with Select.
type Mask []bool

// NewMask returns a mask of length n with every entry set to value.
func NewMask(n int, value bool) Mask {
	m := make(Mask, n)
	if value {
		for i := range m {
			m[i] = true
		}
	}
	return m
}

// Or returns the element-wise logical OR of m and other.
func (m Mask) Or(other Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] || (i < len(other) && other[i])
	}
	return out
}

// And returns the element-wise logical AND of m and other.
func (m Mask) And(other Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && i < len(other) && other[i]
	}
	return out
}

// Count returns the number of true entries.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
