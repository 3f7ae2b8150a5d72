package archive

import (
	"context"
	"io"

	"github.com/datatrails/go-datatrails-common/azblob"
)

type logBlobReader interface {
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)

	List(ctx context.Context, opts ...azblob.Option) (*azblob.ListerResponse, error)
}

// BlobRead reads the whole of the blob at blobPath. A missing blob is reported
// as ErrBlobNotFound.
func BlobRead(
	ctx context.Context, blobPath string, store logBlobReader, opts ...azblob.Option,
) (*azblob.ReaderResponse, []byte, error) {

	rr, err := store.Reader(ctx, blobPath, opts...)
	if err != nil {
		return nil, nil, WrapBlobNotFound(err)
	}
	defer rr.Reader.Close()

	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, nil, err
	}
	return rr, data, nil
}

// LastPrefixedBlob returns the path of the last blob found under the prefix
// path and the total number of blobs under the path. The path is "" if there
// are none.
func LastPrefixedBlob(
	ctx context.Context, store logBlobReader, blobPrefixPath string, opts ...azblob.Option,
) (string, uint64, error) {

	var last string
	var foundCount uint64

	var marker azblob.ListMarker
	for {
		listOpts := append([]azblob.Option{
			azblob.WithListPrefix(blobPrefixPath), azblob.WithListMarker(marker)}, opts...)
		r, err := store.List(ctx, listOpts...)
		if err != nil {
			return "", foundCount, err
		}
		if len(r.Items) == 0 {
			return last, foundCount, nil
		}

		foundCount += uint64(len(r.Items))

		// we want the _last_ listed, so we just keep over-writing
		last = *r.Items[len(r.Items)-1].Name
		marker = r.Marker
		if marker == nil {
			break
		}
	}
	return last, foundCount, nil
}
