package archive

import (
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ArchiveOptions configures the archive implementations. Implementations
// ignore the options they don't support.
type ArchiveOptions struct {
	// The following options are only relevant to LevelDBArchive
	noSync bool
	prefix []byte

	// The following options are only relevant to BlobArchive

	// options that are forwarded when issuing a read blob call
	remoteReadOpts []azblob.Option
	// options that are forwarded when issuing a put blob call
	remoteWriteOpts []azblob.Option
}

func (o ArchiveOptions) writeOptions() *opt.WriteOptions {
	return &opt.WriteOptions{Sync: !o.noSync}
}

type ArchiveOption func(*ArchiveOptions)

// WithNoSync returns from Put before the leaf reaches stable storage
func WithNoSync() ArchiveOption {
	return func(opts *ArchiveOptions) {
		opts.noSync = true
	}
}

// WithKeyPrefix scopes the archive keys under prefix, so that the archives of
// several logs can share one database.
func WithKeyPrefix(prefix []byte) ArchiveOption {
	return func(opts *ArchiveOptions) {
		opts.prefix = append([]byte(nil), prefix...)
	}
}

func WithReadBlobOption(opt azblob.Option) ArchiveOption {
	return func(opts *ArchiveOptions) {
		opts.remoteReadOpts = append(opts.remoteReadOpts, opt)
	}
}

func WithWriteBlobOption(opt azblob.Option) ArchiveOption {
	return func(opts *ArchiveOptions) {
		opts.remoteWriteOpts = append(opts.remoteWriteOpts, opt)
	}
}
