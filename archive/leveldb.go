package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/datatrails/go-datatrails-mmr/nodestore"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDBArchive is an mmr.Archive kept in a goleveldb database. It may have
// a database to itself or share the database of a nodestore.LevelDBStore.
type LevelDBArchive struct {
	log   logger.Logger
	db    *leveldb.DB
	owned bool
	opts  ArchiveOptions
}

// OpenLevelDBArchive opens, or creates, an archive database at path. An empty
// path opens an in-memory database.
func OpenLevelDBArchive(log logger.Logger, path string, opts ...ArchiveOption) (*LevelDBArchive, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	a := NewLevelDBArchive(log, db, opts...)
	a.owned = true
	log.Infof("archive opened: path=%q", path)
	return a, nil
}

// NewLevelDBArchive creates an archive in an already open database. The
// archive uses its own table space so it can share the node store database.
func NewLevelDBArchive(log logger.Logger, db *leveldb.DB, opts ...ArchiveOption) *LevelDBArchive {
	a := &LevelDBArchive{log: log, db: db}
	for _, o := range opts {
		o(&a.opts)
	}
	return a
}

// Close closes the database if the archive opened it
func (a *LevelDBArchive) Close() error {
	if !a.owned {
		return nil
	}
	return a.db.Close()
}

func (a *LevelDBArchive) Put(ctx context.Context, i uint64, n mmr.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := n.MarshalBinary()
	if err != nil {
		return err
	}
	err = a.db.Put(nodestore.ArchiveTable.Key(a.opts.prefix, i), data, a.opts.writeOptions())
	if errors.Is(err, leveldb.ErrClosed) {
		return fmt.Errorf("%w: put %d", ErrArchiveClosed, i)
	}
	if err != nil {
		return fmt.Errorf("archive put %d: %w", i, err)
	}
	return nil
}

func (a *LevelDBArchive) Get(ctx context.Context, i uint64) (mmr.Node, bool, error) {
	if err := ctx.Err(); err != nil {
		return mmr.Node{}, false, err
	}
	data, err := a.db.Get(nodestore.ArchiveTable.Key(a.opts.prefix, i), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return mmr.Node{}, false, nil
	}
	if errors.Is(err, leveldb.ErrClosed) {
		return mmr.Node{}, false, fmt.Errorf("%w: get %d", ErrArchiveClosed, i)
	}
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("archive get %d: %w", i, err)
	}
	n, err := mmr.UnmarshalNode(data)
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("%w: at %d: %v", ErrNodeDataCorrupt, i, err)
	}
	return n, true, nil
}
