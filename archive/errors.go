package archive

import "errors"

var (
	ErrBlobNotFound    = errors.New("blob not found")
	ErrArchiveClosed   = errors.New("the archive is closed")
	ErrLogIDRequired   = errors.New("a log identity is required")
	ErrNodeDataCorrupt = errors.New("archived node data is corrupt")
)
