package prim

// BitsToBytes packs bits eight to a byte, least significant bit first. A
// trailing partial group occupies the low bits of the final byte. The
// original bit length is returned alongside so BytesToBits can drop the
// padding again.
func BitsToBytes(bits []bool) (int, []byte) {
	n := len(bits)
	out := make([]byte, 0, (n+7)/8)
	for idx := 0; idx < n; idx += 8 {
		end := min(idx+8, n)
		out = append(out, bitsToByte(bits[idx:end]))
	}
	return n, out
}

// BytesToBits unpacks bytes least significant bit first and truncates the
// result to n bits.
func BytesToBits(n int, bytes []byte) []bool {
	out := make([]bool, 0, len(bytes)*8)
	for _, b := range bytes {
		bits := byteToBits(b)
		out = append(out, bits[:]...)
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func bitsToByte(bits []bool) byte {
	var b byte
	for i := len(bits) - 1; i >= 0; i-- {
		b <<= 1
		if bits[i] {
			b |= 1
		}
	}
	return b
}

func byteToBits(b byte) [8]bool {
	var out [8]bool
	for i := range out {
		out[i] = b&1 == 1
		b >>= 1
	}
	return out
}
