package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLeaf(t *testing.T) {
	codec, err := NewLeafCodec()
	require.NoError(t, err)
	hasher := NewBlake2b256Hasher()

	leaf := LedgerLeaf{Height: 7, ParentHash: hasher.Digest([]byte("block 6"))}

	a, err := EncodeLeaf(codec, leaf)
	require.NoError(t, err)
	b, err := EncodeLeaf(codec, leaf)
	require.NoError(t, err)
	assert.True(t, a.IsData())
	assert.Equal(t, a.Digest(hasher), b.Digest(hasher), "leaf encoding must be deterministic")

	var decoded LedgerLeaf
	require.NoError(t, DecodeLeaf(codec, a, &decoded))
	assert.Equal(t, leaf, decoded)

	err = DecodeLeaf(codec, NewHashNode(a.Digest(hasher)), &decoded)
	assert.ErrorIs(t, err, ErrNotDataNode)
}
