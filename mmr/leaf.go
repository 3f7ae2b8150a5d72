package mmr

import (
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
)

// LedgerLeaf is the leaf appended at each ledger block boundary. It commits
// the height at which it was appended and the hash of the parent block.
type LedgerLeaf struct {
	Height     uint64 `cbor:"1,keyasint"`
	ParentHash []byte `cbor:"2,keyasint"`
}

// NewLeafCodec returns the deterministic codec used to serialize leaves, so
// that equal leaves always produce equal digests.
func NewLeafCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

// EncodeLeaf serializes leaf and returns it as a DataNode
func EncodeLeaf(codec dtcbor.CBORCodec, leaf any) (Node, error) {
	data, err := codec.MarshalCBOR(leaf)
	if err != nil {
		return Node{}, err
	}
	return NewDataNode(data), nil
}

// DecodeLeaf decodes the data of a DataNode into leaf
func DecodeLeaf(codec dtcbor.CBORCodec, n Node, leaf any) error {
	if !n.IsData() {
		return fmt.Errorf("%w: %v", ErrNotDataNode, n)
	}
	return codec.UnmarshalInto(n.value, leaf)
}
