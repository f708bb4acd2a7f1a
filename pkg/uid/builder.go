package uid

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/arguskv/argus/internal/lsmerr"
)

// nowMs returns the current wall-clock time as milliseconds since the Unix
// epoch.
func nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

// maxRandBytes is the all-ones value of the 80-bit randomness field.
var maxRandBytes = [10]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// maxRandFor returns the override-adjusted ceiling of the randomness
// field: the all-ones value with any pinned cluster/process byte forced to
// its override, mirroring the reference implementation's max_rand(). With
// both overrides set this is (2^64-1)<<16 | cluster<<8 | process.
func maxRandFor(clusterID, processID *uint8) [10]byte {
	ceiling := maxRandBytes
	applyOverrides(&ceiling, clusterID, processID)

	return ceiling
}

// Builder generates UIDs: a caller-supplied or wall-clock millisecond
// timestamp plus 80 bits of randomness, optionally with the cluster/process
// bytes pinned to fixed values. A Builder is not safe for concurrent use.
type Builder struct {
	rng        *rand.Rand
	latest     UID
	haveLatest bool
	clusterID  *uint8
	processID  *uint8
}

// NewBuilder returns a Builder seeded from the host's default entropy
// source (crypto/rand). Seeding failure is treated as fatal, matching the
// reference implementation: a builder that cannot obtain entropy cannot
// generate unpredictable UIDs.
func NewBuilder() *Builder {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("uid: failed to read seed entropy: " + err.Error())
	}

	s1 := binary.LittleEndian.Uint64(seed[0:8])
	s2 := binary.LittleEndian.Uint64(seed[8:16])

	return &Builder{rng: rand.New(rand.NewPCG(s1, s2))}
}

// WithClusterID pins every subsequently generated UID's cluster byte to id,
// overriding the drawn randomness at that position. It returns b for
// chaining.
func (b *Builder) WithClusterID(id uint8) *Builder {
	b.clusterID = &id
	return b
}

// WithProcessID pins every subsequently generated UID's process byte to id,
// overriding the drawn randomness at that position. It returns b for
// chaining.
func (b *Builder) WithProcessID(id uint8) *Builder {
	b.processID = &id
	return b
}

// Gen generates a UID for the current wall-clock time in non-strict mode.
// It never fails: Exhausted cannot occur without strict mode.
func (b *Builder) Gen() UID {
	u, err := b.GenByStrict(false)
	if err != nil {
		// unreachable: GenByStrict only fails in strict mode.
		panic(err)
	}

	return u
}

// GenByStrict generates a UID for the current wall-clock time. In strict
// mode it enforces that the returned UID is strictly greater than the
// previous UID this Builder generated; see GenByMs for the full contract.
func (b *Builder) GenByStrict(strict bool) (UID, error) {
	return b.GenByMs(nowMs(), strict)
}

// GenByMs generates a UID stamped with ms milliseconds since the Unix
// epoch.
//
// In non-strict mode, 80 random bits are drawn fresh (subject to cluster
// and process overrides) and combined with ms; collisions are possible and
// not checked for.
//
// In strict mode, when ms equals the timestamp of the last UID this
// Builder produced, the new randomness is drawn uniformly from
// (latest_rand, max_rand] rather than the full range, guaranteeing the
// result strictly exceeds the previous UID byte-for-byte. max_rand folds
// in the cluster/process overrides (their bytes held fixed at the override
// value, not 0xFF), matching the reference implementation's max_rand(): a
// pinned cluster/process pair only ever has the 64-bit entropy portion to
// draw from, so exhaustion is detected against that narrower ceiling
// rather than the unconstrained 80-bit one. If latest_rand is already
// max_rand, the range is empty and GenByMs returns an lsmerr.KindExhausted
// error instead of a UID. A ms less than the previous call's timestamp is
// itself out of range for monotonicity and also yields Exhausted, since no
// draw can make the result compare greater.
func (b *Builder) GenByMs(ms uint64, strict bool) (UID, error) {
	var randBytes [10]byte

	maxRand := maxRandFor(b.clusterID, b.processID)

	sameMillis := strict && b.haveLatest && ms == b.latest.TimestampMs()
	olderMillis := strict && b.haveLatest && ms < b.latest.TimestampMs()

	switch {
	case olderMillis:
		return UID{}, lsmerr.Exhausted("uid.gen")

	case sameMillis:
		var latestRand [10]byte
		copy(latestRand[:], b.latest[6:16])

		if compareBytes(latestRand[:], maxRand[:]) >= 0 {
			return UID{}, lsmerr.Exhausted("uid.gen")
		}

		next, ok := addOne(latestRand)
		if !ok {
			return UID{}, lsmerr.Exhausted("uid.gen")
		}

		for {
			drawn, err := uniformRange(b.rng, next, maxRand)
			if err != nil {
				return UID{}, err
			}

			// Pinning the override bytes can bring a draw back down to
			// latest_rand or below; such draws are redrawn.
			applyOverrides(&drawn, b.clusterID, b.processID)

			if compareBytes(drawn[:], latestRand[:]) > 0 {
				randBytes = drawn
				break
			}
		}

	default:
		var buf [10]byte
		fillRandom(b.rng, &buf)
		randBytes = buf
	}

	applyOverrides(&randBytes, b.clusterID, b.processID)

	var u UID
	putTimestampMs(&u, ms)
	copy(u[6:16], randBytes[:])

	b.latest = u
	b.haveLatest = true

	return u, nil
}

// putTimestampMs writes the low 48 bits of ms into u's top 6 bytes,
// big-endian.
func putTimestampMs(u *UID, ms uint64) {
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)
}

// applyOverrides writes fixed cluster/process bytes over the drawn
// randomness, when set.
func applyOverrides(rnd *[10]byte, clusterID, processID *uint8) {
	if clusterID != nil {
		rnd[8] = *clusterID
	}

	if processID != nil {
		rnd[9] = *processID
	}
}

// fillRandom draws 80 bits from rng into buf, two 32-bit draws plus one
// 16-bit draw to cover 80 bits exactly.
func fillRandom(rng *rand.Rand, buf *[10]byte) {
	binary.BigEndian.PutUint32(buf[0:4], rng.Uint32())
	binary.BigEndian.PutUint32(buf[4:8], rng.Uint32())
	binary.BigEndian.PutUint16(buf[8:10], uint16(rng.Uint32()))
}

// uniformRange draws a value uniform-ish in [lo, hi] (inclusive, as 80-bit
// big-endian byte arrays): a fresh 80-bit candidate reduced modulo the
// span and added to lo. With an 80-bit span the modulo bias is
// astronomically small and not a correctness concern here; what matters
// is that every draw lands in range. It returns lsmerr.KindExhausted if
// lo > hi (an empty range).
func uniformRange(rng *rand.Rand, lo, hi [10]byte) ([10]byte, error) {
	if compareBytes(lo[:], hi[:]) > 0 {
		return [10]byte{}, lsmerr.Exhausted("uid.gen")
	}

	span, ok := subBytes(hi, lo) // span = hi - lo, fits in 80 bits since hi >= lo
	if !ok {
		return [10]byte{}, lsmerr.Exhausted("uid.gen")
	}

	spanPlusOne, ok := addOne(span)

	var candidate [10]byte
	fillRandom(rng, &candidate)

	var offset [10]byte
	if !ok {
		// span+1 overflowed 80 bits, meaning span covers the entire
		// range: any candidate is already in [0, span].
		offset = candidate
	} else {
		offset = modRemainder(candidate, spanPlusOne)
	}

	result, ok := addBytes(lo, offset)
	if !ok {
		// lo+offset cannot overflow: offset <= span = hi-lo, so
		// lo+offset <= hi, which fits in 80 bits by construction.
		panic("uid: unreachable overflow in uniformRange")
	}

	return result, nil
}

// modRemainder returns v mod m for 80-bit big-endian byte arrays, via
// repeated doubling-subtraction (binary long division), where m is
// spanPlusOne and is guaranteed non-zero by the caller.
func modRemainder(v, m [10]byte) [10]byte {
	if isZeroBytes(m) {
		return v
	}

	// negM is 2^80 - m: adding it modulo 2^80 subtracts m, including when
	// the shifted remainder carried out past bit 79.
	var inverted [10]byte
	for i := range m {
		inverted[i] = ^m[i]
	}

	negM, _ := addOne(inverted)

	var rem [10]byte

	for bit := 0; bit < 80; bit++ {
		carried := rem[0]&0x80 != 0
		rem = shiftLeft1(rem)

		if bitAt(v, bit) {
			rem[9] |= 1
		}

		if carried || compareBytes(rem[:], m[:]) >= 0 {
			rem, _ = addBytes(rem, negM)
		}
	}

	return rem
}

// bitAt returns the bit at position bit (0 = most significant) of an
// 80-bit big-endian byte array.
func bitAt(v [10]byte, bit int) bool {
	byteIdx := bit / 8
	shift := 7 - uint(bit%8)

	return v[byteIdx]&(1<<shift) != 0
}

// shiftLeft1 shifts an 80-bit big-endian byte array left by one bit,
// discarding the bit shifted out of the top (modRemainder reads that bit
// before shifting).
func shiftLeft1(v [10]byte) [10]byte {
	var out [10]byte

	var carry byte
	for i := 9; i >= 0; i-- {
		out[i] = (v[i] << 1) | carry
		carry = v[i] >> 7
	}

	return out
}

func isZeroBytes(v [10]byte) bool {
	for _, b := range v {
		if b != 0 {
			return false
		}
	}

	return true
}

// compareBytes compares two equal-length big-endian byte slices
// numerically: -1, 0, 1.
func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}

			return 1
		}
	}

	return 0
}

// addBytes computes a+b over 80-bit big-endian arrays; ok is false on
// overflow past 80 bits.
func addBytes(a, b [10]byte) (sum [10]byte, ok bool) {
	var carry uint16

	for i := 9; i >= 0; i-- {
		v := uint16(a[i]) + uint16(b[i]) + carry
		sum[i] = byte(v)
		carry = v >> 8
	}

	return sum, carry == 0
}

// subBytes computes a-b over 80-bit big-endian arrays, requiring a >= b;
// ok is false otherwise.
func subBytes(a, b [10]byte) (diff [10]byte, ok bool) {
	if compareBytes(a[:], b[:]) < 0 {
		return [10]byte{}, false
	}

	var borrow int16

	for i := 9; i >= 0; i-- {
		v := int16(a[i]) - int16(b[i]) - borrow
		if v < 0 {
			v += 256
			borrow = 1
		} else {
			borrow = 0
		}

		diff[i] = byte(v)
	}

	return diff, true
}

// addOne computes v+1 over an 80-bit big-endian array; ok is false if v is
// already all-ones (would overflow to 81 bits).
func addOne(v [10]byte) (result [10]byte, ok bool) {
	return addBytes(v, [10]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
}
