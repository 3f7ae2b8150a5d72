package mmr

import "errors"

var (
	ErrLeafIndexOutOfRange = errors.New("leaf index out of range")
	ErrMissingArchivedData = errors.New("node not available from the store or the archive")
	ErrRootMismatch        = errors.New("the proof does not reproduce the root")
	ErrMalformedProof      = errors.New("the proof is malformed")
)

var (
	ErrNodeEncoding     = errors.New("invalid node encoding")
	ErrNotDataNode      = errors.New("node does not carry leaf data")
	ErrUnknownHasher    = errors.New("unknown hasher")
	ErrArchiveRequired  = errors.New("leaf pruning requires an archive")
	ErrLeafCountInvalid = errors.New("leaf count exceeds the current mmr")
	ErrNodeNotFound     = errors.New("mmr node not found")
	ErrArchiveMismatch  = errors.New("archived leaf does not match the stored digest")
)
