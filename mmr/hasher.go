package mmr

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	HasherBlake2b256 = "blake2b-256"
	HasherKeccak256  = "keccak-256"
	HasherSHA256     = "sha-256"
)

// Hasher is the one way function used to build the mmr. Combine produces the
// parent of two sibling digests, left then right. Digest produces the digest
// of serialized leaf data.
type Hasher interface {
	Combine(left, right []byte) []byte
	Digest(data []byte) []byte
	Size() int
}

// poolHasher adapts any hash.Hash constructor. Instances are pooled so that
// concurrent proof generation and verification never share hash state.
type poolHasher struct {
	name string
	size int
	pool sync.Pool
}

func newPoolHasher(name string, newHash func() hash.Hash) *poolHasher {
	h := &poolHasher{
		name: name,
		size: newHash().Size(),
	}
	h.pool.New = func() any { return newHash() }
	return h
}

func (h *poolHasher) sum(values ...[]byte) []byte {
	hasher := h.pool.Get().(hash.Hash)
	defer h.pool.Put(hasher)

	hasher.Reset()
	for _, v := range values {
		hasher.Write(v)
	}
	return hasher.Sum(nil)
}

// Combine returns H(left || right)
func (h *poolHasher) Combine(left, right []byte) []byte {
	return h.sum(left, right)
}

func (h *poolHasher) Digest(data []byte) []byte {
	return h.sum(data)
}

func (h *poolHasher) Size() int { return h.size }

func (h *poolHasher) String() string { return h.name }

func newBlake2b256() hash.Hash {
	// New256 only fails for keys longer than 64 bytes
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func NewBlake2b256Hasher() Hasher {
	return newPoolHasher(HasherBlake2b256, newBlake2b256)
}

func NewKeccak256Hasher() Hasher {
	return newPoolHasher(HasherKeccak256, sha3.NewLegacyKeccak256)
}

func NewSHA256Hasher() Hasher {
	return newPoolHasher(HasherSHA256, sha256.New)
}

// HasherByName returns the hasher registered under name. The empty name
// selects blake2b-256.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", HasherBlake2b256:
		return NewBlake2b256Hasher(), nil
	case HasherKeccak256:
		return NewKeccak256Hasher(), nil
	case HasherSHA256:
		return NewSHA256Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownHasher, name)
	}
}

// EmptyRoot is the root of the mmr before any leaf is added: Size() zero bytes.
func EmptyRoot(hasher Hasher) []byte {
	return make([]byte, hasher.Size())
}
