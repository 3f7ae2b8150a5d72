//go:build integration && azurite

package signedroots

import (
	"context"
	"crypto/elliptic"
	"testing"
	"time"

	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-mmr/archive"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/datatrails/go-datatrails-mmr/mmrtesting"
	"github.com/datatrails/go-datatrails-mmr/nodestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedRootStorePublish(t *testing.T) {
	ctx := context.Background()
	tc := mmrtesting.NewBlobContext(t, mmrtesting.TestConfig{
		Seed: 1698342521, TestLabelPrefix: "TestSignedRootStorePublish", Container: "mmrsignedroots",
	})
	tc.DeleteBlobsByPrefix(archive.LogSignedRootsPrefix(tc.Cfg.LogID))

	acc, err := mmr.NewAccumulator(tc.Log, nodestore.NewMemoryStore(), mmr.NewBlake2b256Hasher())
	require.NoError(t, err)

	rs := mustNewRootSigner(t, testSignerConfig(), mustGenerateECKey(t, elliptic.P256()))
	s, err := NewSignedRootStore(tc.Log, tc.Storer, rs.Codec(), tc.Cfg.LogID)
	require.NoError(t, err)

	for _, n := range []int{4, 5, 9} {
		tc.AppendLeaves(acc, n)
		state := StateFor(acc, time.Now().Unix())
		msg, err := rs.Sign1(state, nil)
		require.NoError(t, err)
		require.NoError(t, s.Put(ctx, state, msg))
	}

	signed, state, count, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
	assert.Equal(t, uint64(18), state.LeafCount)
	require.NoError(t, VerifyAccumulatorRoot(
		rs.Codec(), dtcose.NewCWTPublicKeyProvider(signed), acc, signed, state, nil))

	signed, state, err = s.Get(ctx, 9)
	require.NoError(t, err)
	require.NoError(t, VerifyAccumulatorRoot(
		rs.Codec(), dtcose.NewCWTPublicKeyProvider(signed), acc, signed, state, nil))
}
