package signedroots

import (
	"bytes"
	"context"
	"crypto/elliptic"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/archive"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBlobs serves blob reads and listings from memory
type testBlobs struct {
	blobs map[string][]byte
}

func (b testBlobs) Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error) {
	data, ok := b.blobs[identity]
	if !ok {
		return nil, fmt.Errorf("%s: %w", identity, archive.ErrBlobNotFound)
	}
	return &azblob.ReaderResponse{Reader: io.NopCloser(bytes.NewReader(data))}, nil
}

func (b testBlobs) List(ctx context.Context, opts ...azblob.Option) (*azblob.ListerResponse, error) {
	// options are opaque, so every blob is listed. Tests use a single log.
	var names []string
	for name := range b.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	var items []*azStorageBlob.BlobItemInternal
	for _, name := range names {
		name := name
		items = append(items, &azStorageBlob.BlobItemInternal{Name: &name})
	}
	return &azblob.ListerResponse{Items: items}, nil
}

func newTestSignedRootStore(t *testing.T, blobs testBlobs, logID string) SignedRootStore {
	logger.New("TEST")
	codec, err := NewRootSignerCodec()
	require.NoError(t, err)
	return SignedRootStore{
		log:    logger.Sugar.WithServiceName("signedroots"),
		reader: blobs,
		codec:  codec,
		logID:  logID,
	}
}

func TestSignedRootStoreLatest(t *testing.T) {
	ctx := context.Background()
	logID := "9f3a6d1e-2a53-4c1c-8d7b-1a2b3c4d5e6f"

	key := mustGenerateECKey(t, elliptic.P256())
	rs := mustNewRootSigner(t, testSignerConfig(), key)

	blobs := testBlobs{blobs: make(map[string][]byte)}
	roots := map[uint64][]byte{}
	for _, leafCount := range []uint64{3, 10, 12} {
		state := MMRState{MMRSize: mmr.MMRSize(leafCount), LeafCount: leafCount, Root: []byte{byte(leafCount)}, Timestamp: int64(leafCount)}
		msg, err := rs.Sign1(state, nil)
		require.NoError(t, err)
		blobs.blobs[archive.LogSignedRootPath(logID, leafCount)] = msg
		roots[leafCount] = state.Root
	}
	s := newTestSignedRootStore(t, blobs, logID)

	signed, state, count, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
	assert.Equal(t, uint64(12), state.LeafCount)

	state.Root = roots[state.LeafCount]
	require.NoError(t, VerifySignedRoot(s.codec, dtcose.NewCWTPublicKeyProvider(signed), signed, state, nil))

	_, state, err = s.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), state.LeafCount)

	_, _, err = s.Get(ctx, 11)
	require.ErrorIs(t, err, ErrSignedRootNotFound)
}

func TestSignedRootStoreLatestEmpty(t *testing.T) {
	s := newTestSignedRootStore(t, testBlobs{blobs: map[string][]byte{}}, "empty")
	_, _, _, err := s.Latest(context.Background())
	require.ErrorIs(t, err, ErrSignedRootNotFound)
}

func TestSignedRootStorePutReadOnly(t *testing.T) {
	s := newTestSignedRootStore(t, testBlobs{blobs: map[string][]byte{}}, "ro")
	err := s.Put(context.Background(), MMRState{LeafCount: 1}, []byte{1})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "read only"))
}

func TestNewSignedRootStoreRequiresLogID(t *testing.T) {
	codec, err := NewRootSignerCodec()
	require.NoError(t, err)
	_, err = NewSignedRootStore(nil, nil, codec, "")
	require.ErrorIs(t, err, archive.ErrLogIDRequired)
}
