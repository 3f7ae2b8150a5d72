package archive

import "fmt"

const (
	V1MMRPrefix                = "v1/mmrs"
	V1MMRNodeBlobNameFmt       = "%016d.node"
	V1MMRSignedRootBlobNameFmt = "%016d.sth"
)

// Layout of an mmr in azure blob storage

// LogNodesPrefix returns the blob path prefix of the archived nodes of a log
func LogNodesPrefix(logID string) string {
	return fmt.Sprintf("%s/%s/nodes/", V1MMRPrefix, logID)
}

// LogSignedRootsPrefix returns the blob path prefix of the signed roots
// published for a log.
func LogSignedRootsPrefix(logID string) string {
	return fmt.Sprintf("%s/%s/signedroots/", V1MMRPrefix, logID)
}

// LogNodeBlobPath returns the blob path of the archived node at position i
//
// The returned string forms a relative resource name with a versioned resource
// prefix of 'v1/mmrs/{log-identity}/nodes/'
//
// Because azure blob names sort and compare only *lexically*, the position is
// zero padded to 16 digits.
func LogNodeBlobPath(logID string, i uint64) string {
	return LogNodesPrefix(logID) + fmt.Sprintf(V1MMRNodeBlobNameFmt, i)
}

// LogSignedRootPath returns the blob path of the signed root for the mmr with
// leafCount leaves.
func LogSignedRootPath(logID string, leafCount uint64) string {
	return LogSignedRootsPrefix(logID) + fmt.Sprintf(V1MMRSignedRootBlobNameFmt, leafCount)
}
