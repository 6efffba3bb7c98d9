// Package rng implements the deterministic generator of unforgeable
// references.
//
// The generator of a session is a pure function of the deploy hash and the
// phase: the seed is the BLAKE2b-256 digest of the hash followed by the phase
// byte, and the stream is the ChaCha20 keystream of that seed with a zero
// nonce. Every node executing the same phase of the same deploy draws the same
// references in the same order.
package rng

import (
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/uref"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// Generator is the stream of a session. It is not safe for concurrent use.
type Generator struct {
	cipher *chacha20.Cipher
}

// New returns the generator of the phase of the deploy.
func New(deployHash execution.DeployHash, phase execution.Phase) *Generator {
	return FromSeed(Seed(deployHash, phase))
}

// Seed returns the seed of the phase of the deploy.
func Seed(deployHash execution.DeployHash, phase execution.Phase) [32]byte {
	input := make([]byte, 0, len(deployHash)+1)
	input = append(input, deployHash[:]...)
	input = append(input, byte(phase))

	return blake2b.Sum256(input)
}

// FromSeed returns the generator of the seed.
func FromSeed(seed [32]byte) *Generator {
	nonce := make([]byte, chacha20.NonceSize)

	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce)
	if err != nil {
		// Only reachable with invalid key or nonce sizes.
		panic(err)
	}

	return &Generator{cipher: cipher}
}

// Read fills p with the next bytes of the stream. It never fails.
func (g *Generator) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}

	g.cipher.XORKeyStream(p, p)

	return len(p), nil
}

// NextAddress draws the next 32 bytes of the stream.
func (g *Generator) NextAddress() uref.Addr {
	var addr uref.Addr
	g.Read(addr[:])

	return addr
}

// NewURef draws a new reference with the rights.
func (g *Generator) NewURef(rights uref.AccessRights) uref.URef {
	return uref.New(g.NextAddress(), rights)
}
