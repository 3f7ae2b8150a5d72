package nodestore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

var (
	ErrMetadataCorrupt = errors.New("the stored mmr metadata is corrupt")
	ErrStoreClosed     = errors.New("the node store is closed")
)

const (
	metaFixedSize = 16
)

// LevelDBStore is a durable mmr.NodeStore backed by goleveldb.
//
// Each Append is written as a single leveldb batch holding every new node and
// the updated metadata record, so a crash never exposes a partial append.
type LevelDBStore struct {
	log  logger.Logger
	db   *leveldb.DB
	opts StoreOptions

	mu        sync.RWMutex
	size      uint64
	leafCount uint64
	root      []byte
	closed    bool
}

// OpenLevelDBStore opens, or creates, the store at path. An empty path, or the
// WithMemStorage option, opens an in-memory database.
func OpenLevelDBStore(log logger.Logger, path string, opts ...StoreOption) (*LevelDBStore, error) {
	s := &LevelDBStore{log: log}
	for _, o := range opts {
		o(&s.opts)
	}

	var err error
	if path == "" || s.opts.memStorage {
		s.db, err = leveldb.Open(storage.NewMemStorage(), s.opts.dbOpts)
	} else {
		s.db, err = leveldb.OpenFile(path, s.opts.dbOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("open node store %q: %w", path, err)
	}

	if err = s.loadMeta(); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	log.Infof("node store opened: path=%q, size=%d, leaves=%d", path, s.size, s.leafCount)
	return s, nil
}

// DB returns the underlying database so that other tables, such as a leaf
// archive, can share it.
func (s *LevelDBStore) DB() *leveldb.DB { return s.db }

func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *LevelDBStore) Get(i uint64) (mmr.Node, bool, error) {
	data, err := s.db.Get(NodeTable.Key(s.opts.prefix, i), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return mmr.Node{}, false, nil
	}
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("read node %d: %w", i, err)
	}
	n, err := mmr.UnmarshalNode(data)
	if err != nil {
		return mmr.Node{}, false, fmt.Errorf("node %d: %w", i, err)
	}
	return n, true, nil
}

func (s *LevelDBStore) Size() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *LevelDBStore) LeafCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leafCount
}

func (s *LevelDBStore) Root() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.root)
}

func (s *LevelDBStore) Append(batch mmr.AppendBatch) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	first := s.size
	b := new(leveldb.Batch)
	for j, n := range batch.Nodes {
		data, err := n.MarshalBinary()
		if err != nil {
			return 0, err
		}
		b.Put(NodeTable.Key(s.opts.prefix, first+uint64(j)), data)
	}
	size := first + uint64(len(batch.Nodes))
	b.Put(MetaTable.Prefix(s.opts.prefix), encodeMeta(size, batch.LeafCount, batch.Root))

	if err := s.db.Write(b, s.opts.writeOptions()); err != nil {
		return 0, fmt.Errorf("commit nodes %d-%d: %w", first, size-1, err)
	}

	s.size = size
	s.leafCount = batch.LeafCount
	s.root = append([]byte(nil), batch.Root...)
	return first, nil
}

func (s *LevelDBStore) loadMeta() error {
	data, err := s.db.Get(MetaTable.Prefix(s.opts.prefix), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read mmr metadata: %w", err)
	}
	s.size, s.leafCount, s.root, err = decodeMeta(data)
	return err
}

func encodeMeta(size, leafCount uint64, root []byte) []byte {
	data := make([]byte, metaFixedSize, metaFixedSize+len(root))
	binary.BigEndian.PutUint64(data[0:8], size)
	binary.BigEndian.PutUint64(data[8:16], leafCount)
	return append(data, root...)
}

func decodeMeta(data []byte) (uint64, uint64, []byte, error) {
	if len(data) < metaFixedSize {
		return 0, 0, nil, fmt.Errorf("%w: %d bytes", ErrMetadataCorrupt, len(data))
	}
	size := binary.BigEndian.Uint64(data[0:8])
	leafCount := binary.BigEndian.Uint64(data[8:16])
	if size != mmr.MMRSize(leafCount) {
		return 0, 0, nil, fmt.Errorf(
			"%w: size %d is not valid for %d leaves", ErrMetadataCorrupt, size, leafCount)
	}
	root := append([]byte(nil), data[metaFixedSize:]...)
	return size, leafCount, root, nil
}
