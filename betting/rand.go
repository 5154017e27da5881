package betting

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// newSeededRand returns a *rand.Rand whose sequence is fully determined by seed,
// so a settlement can be replayed from its recorded seed.
func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(mix(seed), mix(seed+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// cryptoSource is a rand.Source reading from the operating system CSPRNG
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func newSecureRand() *rand.Rand {
	return rand.New(cryptoSource{})
}
