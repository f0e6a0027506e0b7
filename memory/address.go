package memory

// Translate maps the quadword index computed by a load or store (integer
// register plus immediate) to an arena byte offset.
//
// Unit 1 wraps within its data memory. Unit 0 wraps within its own data
// memory below VU0_ALIAS_THRESHOLD, and at or above it is redirected into
// unit 1's VF/VI register window. The comparison is signed, so negative
// indices wrap within unit 0 memory.
func Translate(unit int, index int32) (offset int) {
	l := UnitLayout(unit)

	if unit == 1 {
		offset = l.Data + int(index&VU1_WRAP_MASK)*QWORD
		return
	}

	if index >= VU0_ALIAS_THRESHOLD {
		offset = l.Data + int(index&VU0_ALIAS_MASK)*QWORD
	} else {
		offset = l.Data + int(index&VU0_WRAP_MASK)*QWORD
	}

	return
}

// Aliased returns true if the unit 0 index lands in unit 1's register file.
func Aliased(unit int, index int32) bool {
	return unit == 0 && index >= VU0_ALIAS_THRESHOLD
}
