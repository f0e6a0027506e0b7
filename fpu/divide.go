package fpu

// Status bits raised by the divide unit.
const (
	FLAG_I = uint32(0x10) // invalid
	FLAG_D = uint32(0x20) // divide by zero
)

// signedMax returns the largest finite value with the sign of a^b.
func signedMax(a, b uint32) uint32 {
	return ((a ^ b) & SIGN) | MAX
}

// DIV computes fs/ft for the Q register. A zero divisor gives the signed
// maximum and raises D, or I instead when the dividend is also zero.
func DIV(fs, ft uint32) (q uint32, flags uint32) {
	nfs, nft := Operand(fs), Operand(ft)
	if IsZero(nft) {
		if IsZero(nfs) {
			flags = FLAG_I
		} else {
			flags = FLAG_D
		}
		q = signedMax(fs, ft)
		return
	}

	q = Operand(Div(nfs, nft))
	return
}

// SQRT computes sqrt(|ft|), raising I for a negative operand.
func SQRT(ft uint32) (q uint32, flags uint32) {
	nft := Operand(ft)
	if nft&SIGN != 0 && !IsZero(nft) {
		flags = FLAG_I
	}
	q = Operand(Sqrt(nft))
	return
}

// RSQRT computes fs/sqrt(|ft|). A zero ft follows DIV: D with a signed
// maximum for a non-zero fs, I alone with a signed zero when fs is zero.
// A negative ft raises I.
func RSQRT(fs, ft uint32) (q uint32, flags uint32) {
	nfs, nft := Operand(fs), Operand(ft)
	if IsZero(nft) {
		if IsZero(nfs) {
			flags = FLAG_I
			q = (fs ^ ft) & SIGN
		} else {
			flags = FLAG_D
			q = signedMax(fs, ft)
		}
		return
	}

	if nft&SIGN != 0 {
		flags = FLAG_I
	}
	root := Sqrt(nft)
	q = Operand(Div(nfs, Operand(root)))
	return
}
