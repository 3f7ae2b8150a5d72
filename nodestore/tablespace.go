package nodestore

import "encoding/binary"

// TableSpace divides the key space of a database by adding a one byte prefix
// to each key.
type TableSpace byte

const (
	// NodeTable holds the mmr nodes, keyed by position
	NodeTable TableSpace = 'N'
	// MetaTable holds the committed size, leaf count and root
	MetaTable TableSpace = 'M'
	// ArchiveTable holds archived leaf data, keyed by position
	ArchiveTable TableSpace = 'A'
)

// Key returns the database key for position i. Positions are big endian so
// that keys iterate in position order.
func (t TableSpace) Key(prefix []byte, i uint64) []byte {
	key := make([]byte, 0, len(prefix)+1+8)
	key = append(key, prefix...)
	key = append(key, byte(t))
	return binary.BigEndian.AppendUint64(key, i)
}

// Prefix returns the key prefix shared by every key of the table
func (t TableSpace) Prefix(prefix []byte) []byte {
	key := make([]byte, 0, len(prefix)+1)
	key = append(key, prefix...)
	return append(key, byte(t))
}
