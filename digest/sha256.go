// Package digest implements the streaming FIPS 180-4 SHA-256 used to bind
// benchmark outputs to results, together with constant-time digest equality
// and the hex codec used by the report serialiser.
//
// The implementation is self-contained so that the full hashing state,
// including the running byte count and the finalised flag, lives inside the
// caller-visible Context and never touches the heap.
package digest

import "github.com/pkg/errors"

// Size is the SHA-256 digest size in bytes.
const Size = 32

// Digest is a 32-byte SHA-256 digest.
type Digest [Size]byte

// ErrFinalised is returned by Update on a context whose digest has already
// been produced. Re-initialise the context to reuse it.
var ErrFinalised = errors.New("digest: update on finalised context")

// FIPS 180-4 §4.2.2 round constants.
var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// FIPS 180-4 §5.3.3 initial hash value.
var h0 = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Context is a streaming SHA-256 hasher. The zero value is not usable; call
// Init first. After Final the context rejects further updates until
// re-initialised.
type Context struct {
	h           [8]uint32
	block       [64]byte
	blockLen    uint32
	BytesHashed uint64
	finalised   bool
}

// Init resets the context to the initial hash state.
func (c *Context) Init() {
	c.h = h0
	c.block = [64]byte{}
	c.blockLen = 0
	c.BytesHashed = 0
	c.finalised = false
}

// Finalised reports whether Final has been called since the last Init.
func (c *Context) Finalised() bool {
	return c.finalised
}

// Update absorbs data into the hash state. A zero-length update is a no-op.
//
// Returns ErrFinalised if Final has already been called on this context.
func (c *Context) Update(data []byte) error {
	if c.finalised {
		return ErrFinalised
	}
	if len(data) == 0 {
		return nil
	}

	c.BytesHashed += uint64(len(data))
	c.absorb(data)
	return nil
}

// absorb feeds data through the block buffer without touching the byte count,
// so Final can reuse it for padding.
func (c *Context) absorb(data []byte) {
	if c.blockLen > 0 {
		n := copy(c.block[c.blockLen:], data)
		c.blockLen += uint32(n)
		data = data[n:]
		if c.blockLen < 64 {
			return
		}
		compress(&c.h, c.block[:])
		c.blockLen = 0
	}

	for len(data) >= 64 {
		compress(&c.h, data[:64])
		data = data[64:]
	}

	if len(data) > 0 {
		c.blockLen = uint32(copy(c.block[:], data))
	}
}

// Final applies FIPS 180-4 padding and returns the digest. The context is
// marked finalised; the runner finalises a copy so the live context stays
// usable for post-run audit.
func (c *Context) Final() Digest {
	bitLen := c.BytesHashed * 8

	var pad [64]byte
	pad[0] = 0x80
	padLen := 56 - c.blockLen
	if c.blockLen >= 56 {
		padLen = 120 - c.blockLen
	}
	c.absorb(pad[:padLen])

	var length [8]byte
	length[0] = byte(bitLen >> 56)
	length[1] = byte(bitLen >> 48)
	length[2] = byte(bitLen >> 40)
	length[3] = byte(bitLen >> 32)
	length[4] = byte(bitLen >> 24)
	length[5] = byte(bitLen >> 16)
	length[6] = byte(bitLen >> 8)
	length[7] = byte(bitLen)
	c.absorb(length[:])

	var d Digest
	for i, v := range c.h {
		d[i*4+0] = byte(v >> 24)
		d[i*4+1] = byte(v >> 16)
		d[i*4+2] = byte(v >> 8)
		d[i*4+3] = byte(v)
	}

	c.finalised = true
	return d
}

// Sum computes the SHA-256 digest of b in one shot. Equivalent to
// Init → Update → Final on a fresh context.
func Sum(b []byte) Digest {
	var c Context
	c.Init()
	c.Update(b)
	return c.Final()
}

// Equal compares two digests in constant time by XOR-accumulating all 32
// bytes. Either argument being nil yields false.
func Equal(a, b *Digest) bool {
	if a == nil || b == nil {
		return false
	}
	var acc byte
	for i := 0; i < Size; i++ {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

func rotr(x uint32, n uint) uint32 { return x>>n | x<<(32-n) }

// compress is the FIPS 180-4 §6.2.2 compression function over one 64-byte
// message block.
func compress(state *[8]uint32, block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = uint32(block[i*4])<<24 | uint32(block[i*4+1])<<16 |
			uint32(block[i*4+2])<<8 | uint32(block[i*4+3])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr(w[i-15], 7) ^ rotr(w[i-15], 18) ^ w[i-15]>>3
		s1 := rotr(w[i-2], 17) ^ rotr(w[i-2], 19) ^ w[i-2]>>10
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d := state[0], state[1], state[2], state[3]
	e, f, g, h := state[4], state[5], state[6], state[7]

	for i := 0; i < 64; i++ {
		ep1 := rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25)
		ch := (e & f) ^ (^e & g)
		t1 := h + ep1 + ch + k[i] + w[i]
		ep0 := rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := ep0 + maj

		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}
