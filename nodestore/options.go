package nodestore

import (
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// StoreOptions configures a LevelDBStore
type StoreOptions struct {
	memStorage bool
	noSync     bool

	// keys are prefixed so that several logs can share one database
	prefix []byte

	dbOpts *opt.Options
}

type StoreOption func(*StoreOptions)

// WithMemStorage opens the database over goleveldb's in-memory storage. The
// path is ignored.
func WithMemStorage() StoreOption {
	return func(opts *StoreOptions) {
		opts.memStorage = true
	}
}

// WithNoSync acknowledges appends once leveldb has accepted the batch, before
// it reaches stable storage. A crash may lose the most recent appends.
func WithNoSync() StoreOption {
	return func(opts *StoreOptions) {
		opts.noSync = true
	}
}

func (o StoreOptions) writeOptions() *opt.WriteOptions {
	return &opt.WriteOptions{Sync: !o.noSync}
}

// WithKeyPrefix scopes every key written by the store under prefix
func WithKeyPrefix(prefix []byte) StoreOption {
	return func(opts *StoreOptions) {
		opts.prefix = append([]byte(nil), prefix...)
	}
}

// WithLevelDBOptions forwards options to leveldb when the database is opened
func WithLevelDBOptions(dbOpts *opt.Options) StoreOption {
	return func(opts *StoreOptions) {
		opts.dbOpts = dbOpts
	}
}
