package signedroots

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/archive"
)

var (
	ErrSignedRootNotFound = errors.New("signed root not found")
)

type logBlobReader interface {
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)

	List(ctx context.Context, opts ...azblob.Option) (*azblob.ListerResponse, error)
}

// SignedRootStore publishes signed roots of a log to blob storage and reads
// them back. Blobs are named for the leaf count they commit to, so the last
// blob listed is the most recent root.
type SignedRootStore struct {
	log    logger.Logger
	reader logBlobReader
	writer *azblob.Storer
	codec  cbor.CBORCodec
	logID  string
}

func NewSignedRootStore(
	log logger.Logger, store *azblob.Storer, codec cbor.CBORCodec, logID string,
) (SignedRootStore, error) {
	if logID == "" {
		return SignedRootStore{}, archive.ErrLogIDRequired
	}
	s := SignedRootStore{
		log:    log,
		reader: store,
		writer: store,
		codec:  codec,
		logID:  logID,
	}
	return s, nil
}

// Put publishes a message produced by RootSigner.Sign1 for state
func (s *SignedRootStore) Put(ctx context.Context, state MMRState, signed []byte) error {
	if s.writer == nil {
		return fmt.Errorf("signed root store for %s is read only", s.logID)
	}
	blobPath := archive.LogSignedRootPath(s.logID, state.LeafCount)
	_, err := s.writer.Put(ctx, blobPath, azblob.NewBytesReaderCloser(signed))
	if err != nil {
		return fmt.Errorf("put signed root %s: %w", blobPath, err)
	}
	s.log.Infof("signed root published: %s, leaves=%d", blobPath, state.LeafCount)
	return nil
}

// Get reads the signed root for the mmr with leafCount leaves.
//
// NOTICE: TO VERIFY YOU MUST obtain the mmr root from the log using
// MMRState.LeafCount. See VerifySignedRoot
func (s *SignedRootStore) Get(
	ctx context.Context, leafCount uint64, opts ...azblob.Option,
) (*dtcose.CoseSign1Message, MMRState, error) {
	return s.read(ctx, archive.LogSignedRootPath(s.logID, leafCount), opts...)
}

// Latest reads the most recently published signed root and returns the count
// of signed roots published for the log.
//
// Note that the log head can be arbitrarily ahead of the root signatures.
func (s *SignedRootStore) Latest(
	ctx context.Context, opts ...azblob.Option,
) (*dtcose.CoseSign1Message, MMRState, uint64, error) {

	blobPath, count, err := archive.LastPrefixedBlob(ctx, s.reader, archive.LogSignedRootsPrefix(s.logID))
	if err != nil {
		return nil, MMRState{}, 0, err
	}
	if count == 0 {
		return nil, MMRState{}, 0, fmt.Errorf("%w: log %s", ErrSignedRootNotFound, s.logID)
	}
	signed, unverifiedState, err := s.read(ctx, blobPath, opts...)
	if err != nil {
		return nil, MMRState{}, 0, err
	}
	return signed, unverifiedState, count, nil
}

func (s *SignedRootStore) read(
	ctx context.Context, blobPath string, opts ...azblob.Option,
) (*dtcose.CoseSign1Message, MMRState, error) {
	_, data, err := archive.BlobRead(ctx, blobPath, s.reader, opts...)
	if errors.Is(err, archive.ErrBlobNotFound) {
		return nil, MMRState{}, fmt.Errorf("%w: %s", ErrSignedRootNotFound, blobPath)
	}
	if err != nil {
		return nil, MMRState{}, err
	}
	return DecodeSignedRoot(s.codec, data)
}
