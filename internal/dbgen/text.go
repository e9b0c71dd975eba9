package dbgen

import "fmt"

// copyStr copies s into a fixed-width field and NUL-terminates it.
func copyStr(dst []byte, s string) {
	n := copy(dst, s)
	if n < len(dst) {
		dst[n] = 0
	}
}

// keyedName formats names like "Customer#000000042" into dst.
func keyedName(dst []byte, prefix string, key int64) {
	out := fmt.Appendf(dst[:0], "%s#%09d", prefix, key)
	if len(out) < len(dst) {
		dst[len(out)] = 0
	}
}

// makeText fills dst with word-salad prose of a stream-chosen length in
// [lo, hi] and returns the length. dst must hold hi+1 bytes.
func makeText(stream int, lo, hi int64, dst []byte) int32 {
	target := int(rnd(stream, lo, hi))
	n := 0
	for n < target {
		if n > 0 {
			dst[n] = ' '
			n++
			if n == target {
				break
			}
		}
		n += copy(dst[n:target], pick(stream, commentWords))
	}
	dst[n] = 0
	return int32(n)
}

// vString fills dst with random alphanumeric text of a stream-chosen length
// in [lo, hi] and returns the length.
func vString(stream int, lo, hi int64, dst []byte) int32 {
	n := int(rnd(stream, lo, hi))
	for i := 0; i < n; i++ {
		dst[i] = addressAlphabet[rnd(stream, 0, int64(len(addressAlphabet)-1))]
	}
	dst[n] = 0
	return int32(n)
}

// makePhone writes a nation-coded phone number, "33-467-559-8960" style.
func makePhone(stream int, nation int64, dst []byte) {
	out := fmt.Appendf(dst[:0], "%02d-%03d-%03d-%04d",
		10+nation,
		rnd(stream, 100, 999),
		rnd(stream, 100, 999),
		rnd(stream, 1000, 9999))
	if len(out) < len(dst) {
		dst[len(out)] = 0
	}
}
