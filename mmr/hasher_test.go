package mmr

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherByName(t *testing.T) {
	tests := []struct {
		name      string
		wantEmpty string
		wantErr   error
	}{
		{"", "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", nil},
		{HasherBlake2b256, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", nil},
		{HasherKeccak256, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", nil},
		{HasherSHA256, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", nil},
		{"md5", "", ErrUnknownHasher},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("hasher %q", tt.name), func(t *testing.T) {
			hasher, err := HasherByName(tt.name)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 32, hasher.Size())
			assert.Equal(t, tt.wantEmpty, hex.EncodeToString(hasher.Digest(nil)))
		})
	}
}

func TestHasherCombine(t *testing.T) {
	hasher := NewBlake2b256Hasher()
	a := hasher.Digest([]byte("a"))
	b := hasher.Digest([]byte("b"))

	assert.Equal(t, hasher.Digest(append(append([]byte{}, a...), b...)), hasher.Combine(a, b))
	assert.NotEqual(t, hasher.Combine(a, b), hasher.Combine(b, a))
	assert.Equal(t, hasher.Combine(a, b), hasher.Combine(a, b))
}

func TestEmptyRoot(t *testing.T) {
	assert.Equal(t, make([]byte, 32), EmptyRoot(NewKeccak256Hasher()))
	assert.Equal(t, EmptyRoot(NewBlake2b256Hasher()), BagPeaks(NewBlake2b256Hasher(), nil))
}
