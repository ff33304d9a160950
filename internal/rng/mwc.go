// Package rng implements the Marsaglia multiply-with-carry generator
// used to pick keys for random reads.
package rng

// SeedMask is XORed into the seed to derive the second state word.
const SeedMask uint32 = 0xCAFECAFE

const (
	zMul uint32 = 36969
	wMul uint32 = 18000
)

// MWC is a multiply-with-carry generator over two 32-bit words.
// It is not safe for concurrent use.
type MWC struct {
	z, w uint32
}

// New creates a generator from explicit state words.
func New(z, w uint32) *MWC {
	return &MWC{z: z, w: w}
}

// NewSeeded creates a generator whose first word is the given
// seed and whose second word is the seed XOR SeedMask.
func NewSeeded(seed uint32) *MWC {
	return New(seed, seed^SeedMask)
}

// Next advances both words and returns the combined output.
func (m *MWC) Next() uint32 {
	m.z = zMul*(m.z&0xFFFF) + (m.z >> 16)
	m.w = wMul*(m.w&0xFFFF) + (m.w >> 16)
	return (m.z << 16) + m.w
}

// Intn returns Next() reduced modulo n. It panics if n is 0.
func (m *MWC) Intn(n uint32) uint32 {
	return m.Next() % n
}

// State returns the current state words. Feeding them back to
// New restarts the sequence from this point.
func (m *MWC) State() (z, w uint32) {
	return m.z, m.w
}
