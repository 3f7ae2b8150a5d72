package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/mmr"
)

// BlobArchive is an mmr.Archive kept in azure blob storage, one blob per
// archived node under LogNodesPrefix(logID).
type BlobArchive struct {
	log   logger.Logger
	store *azblob.Storer
	logID string
	opts  ArchiveOptions
}

func NewBlobArchive(
	log logger.Logger, store *azblob.Storer, logID string, opts ...ArchiveOption,
) (*BlobArchive, error) {
	if logID == "" {
		return nil, ErrLogIDRequired
	}
	a := &BlobArchive{log: log, store: store, logID: logID}
	for _, o := range opts {
		o(&a.opts)
	}
	return a, nil
}

func (a *BlobArchive) LogID() string { return a.logID }

func (a *BlobArchive) Put(ctx context.Context, i uint64, n mmr.Node) error {
	data, err := n.MarshalBinary()
	if err != nil {
		return err
	}
	blobPath := LogNodeBlobPath(a.logID, i)
	_, err = a.store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(data), a.opts.remoteWriteOpts...)
	if err != nil {
		return fmt.Errorf("archive put %s: %w", blobPath, err)
	}
	a.log.Debugf("archived: %s", blobPath)
	return nil
}

func (a *BlobArchive) Get(ctx context.Context, i uint64) (mmr.Node, bool, error) {
	blobPath := LogNodeBlobPath(a.logID, i)
	_, data, err := BlobRead(ctx, blobPath, a.store, a.opts.remoteReadOpts...)
	if errors.Is(err, ErrBlobNotFound) {
		return mmr.Node{}, false, nil
	}
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("archive get %s: %w", blobPath, err)
	}
	n, err := mmr.UnmarshalNode(data)
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("%w: %s: %v", ErrNodeDataCorrupt, blobPath, err)
	}
	return n, true, nil
}

// DeleteLog removes every archived node of the log
func (a *BlobArchive) DeleteLog(ctx context.Context) error {
	var paths []string
	var marker azblob.ListMarker
	for {
		r, err := a.store.List(ctx, azblob.WithListPrefix(LogNodesPrefix(a.logID)), azblob.WithListMarker(marker))
		if err != nil {
			return err
		}
		for _, it := range r.Items {
			paths = append(paths, *it.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	for _, p := range paths {
		if err := a.store.Delete(ctx, p); err != nil {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	a.log.Infof("deleted %d archived nodes for log %s", len(paths), a.logID)
	return nil
}
