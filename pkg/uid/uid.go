// Package uid implements a 128-bit time-sortable unique identifier: a
// 48-bit millisecond timestamp followed by 80 bits of randomness, encoded
// as 26 Crockford base32 characters. See [Builder] for generation.
package uid

import (
	"fmt"
	"time"

	"github.com/arguskv/argus/internal/lsmerr"
)

const (
	// TimestampBits is the width of the embedded millisecond timestamp.
	TimestampBits = 48
	// RandBits is the width of the randomness field.
	RandBits = 80
	// ClusterIDBits is the width of the cluster override within the
	// randomness field's low 16 bits.
	ClusterIDBits = 8
	// ProcessIDBits is the width of the process override within the
	// randomness field's low 16 bits.
	ProcessIDBits = 8
	// TextLen is the length of a UID's Crockford base32 text encoding.
	TextLen = 26
)

// alphabet is Crockford's base32, omitting I, L, O, U.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// UID is a 128-bit value logically partitioned as
// [timestamp:48 | entropy:64 | cluster_id:8 | process_id:8], stored here
// big-endian (UID[0] is the most significant byte) so that byte-wise
// comparison of two UIDs matches numeric comparison.
type UID [16]byte

// TimestampMs returns the embedded millisecond timestamp (the top 48
// bits).
func (u UID) TimestampMs() uint64 {
	var v uint64
	for _, b := range u[:6] {
		v = v<<8 | uint64(b)
	}

	return v
}

// Time returns the embedded timestamp as a UTC [time.Time].
func (u UID) Time() time.Time {
	return time.UnixMilli(int64(u.TimestampMs())).UTC()
}

// ClusterID returns the cluster override byte, the upper half of the
// randomness field's low 16 bits.
func (u UID) ClusterID() uint8 { return u[14] }

// ProcessID returns the process override byte, the lower half of the
// randomness field's low 16 bits.
func (u UID) ProcessID() uint8 { return u[15] }

// String renders u as 26 Crockford base32 characters, most significant
// digit first. Because 26*5 = 130 bits cover the 128-bit value with two
// spare high bits that are always zero, the leading character is always
// in the range 0-7.
func (u UID) String() string {
	var buf [TextLen]byte

	work := u
	for i := TextLen - 1; i >= 0; i-- {
		buf[i] = alphabet[work[15]&0x1F]
		shiftRight5(&work)
	}

	return string(buf[:])
}

// DebugString renders u for logs and diagnostics: its text encoding
// alongside decoded timestamp/cluster/process fields. It is not a wire
// format; only [UID.String] and [Parse] define the codec.
func (u UID) DebugString() string {
	return fmt.Sprintf("%s (t=%s cid=%d pid=%d)", u, u.Time().Format(time.RFC3339Nano), u.ClusterID(), u.ProcessID())
}

// Parse decodes a 26-character Crockford base32 string into a UID. It
// rejects strings of any length other than [TextLen] or containing a
// character outside the alphabet, and a string whose value does not fit in
// 128 bits (leading digit 8 or above), since such a string has no UID to
// round-trip to. All failures are lsmerr.KindBadUID.
func Parse(s string) (UID, error) {
	if len(s) != TextLen {
		return UID{}, lsmerr.BadUID("uid.parse", fmt.Sprintf("length %d, want %d", len(s), TextLen))
	}

	var bits [17]byte // 26*5 = 130 bits, held in the low 130 bits of this 136-bit buffer

	for i := 0; i < TextLen; i++ {
		idx := indexAlphabet(s[i])
		if idx < 0 {
			return UID{}, lsmerr.BadUID("uid.parse", fmt.Sprintf("invalid character %q at position %d", s[i], i))
		}

		shiftLeft5Or(&bits, byte(idx))
	}

	// The accumulated 130-bit value occupies bits[6:136) of the buffer;
	// bits[0:6) are always zero (130 < 136). A valid 128-bit UID further
	// requires bits[6:8) — the leading digit's top two bits — to be zero,
	// so the whole first byte must be zero.
	if bits[0] != 0 {
		return UID{}, lsmerr.BadUID("uid.parse", "value exceeds 128 bits")
	}

	var u UID
	copy(u[:], bits[1:17])

	return u, nil
}

func indexAlphabet(c byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}

	return -1
}

// shiftRight5 shifts the 128-bit big-endian value in place by 5 bits
// toward zero (division by 32).
func shiftRight5(b *UID) {
	for i := 15; i >= 0; i-- {
		var hi byte
		if i > 0 {
			hi = b[i-1] << 3
		}

		b[i] = (b[i] >> 5) | hi
	}
}

// shiftLeft5Or shifts the 136-bit big-endian accumulator in b left by 5
// bits and ORs v (0-31) into the newly vacated low bits.
func shiftLeft5Or(b *[17]byte, v byte) {
	carry := v

	for i := 16; i >= 0; i-- {
		next := b[i] >> 3
		b[i] = (b[i] << 5) | carry
		carry = next
	}
}
