package mmr

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// String formats the proof for logs and errors, digests in hex
func (p Proof) String() string {
	return fmt.Sprintf("leaf %d of %d [%s]", p.LeafIndex, p.LeafCount, hexPath(p.Items))
}

func hexPath(path [][]byte) string {
	items := make([]string, 0, len(path))
	for _, it := range path {
		items = append(items, hex.EncodeToString(it))
	}
	return strings.Join(items, ",")
}
