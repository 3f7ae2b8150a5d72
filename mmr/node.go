package mmr

import (
	"encoding/hex"
	"fmt"
)

// NodeKind is the leading discriminant of an encoded Node
type NodeKind uint8

const (
	HashNode NodeKind = 0
	DataNode NodeKind = 1
)

// Node is either the digest of a node or the serialized data of a leaf.
// Interior nodes are always HashNode. A leaf may be held as either, and both
// forms produce the same Digest.
type Node struct {
	kind  NodeKind
	value []byte
}

func NewHashNode(digest []byte) Node {
	return Node{kind: HashNode, value: append([]byte(nil), digest...)}
}

func NewDataNode(data []byte) Node {
	return Node{kind: DataNode, value: append([]byte(nil), data...)}
}

func (n Node) Kind() NodeKind { return n.kind }

func (n Node) IsData() bool { return n.kind == DataNode }

// Value returns the digest or the leaf data. Callers must not modify it.
func (n Node) Value() []byte { return n.value }

// Digest returns the value committed to the mmr for this node
func (n Node) Digest(hasher Hasher) []byte {
	if n.kind == DataNode {
		return hasher.Digest(n.value)
	}
	return n.value
}

// MarshalBinary encodes the node as its kind byte followed by the value
func (n Node) MarshalBinary() ([]byte, error) {
	data := make([]byte, 1+len(n.value))
	data[0] = byte(n.kind)
	copy(data[1:], n.value)
	return data, nil
}

func (n *Node) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrNodeEncoding)
	}
	kind := NodeKind(data[0])
	if kind != HashNode && kind != DataNode {
		return fmt.Errorf("%w: kind %d", ErrNodeEncoding, data[0])
	}
	n.kind = kind
	n.value = append([]byte(nil), data[1:]...)
	return nil
}

func UnmarshalNode(data []byte) (Node, error) {
	var n Node
	if err := n.UnmarshalBinary(data); err != nil {
		return Node{}, err
	}
	return n, nil
}

func (n Node) String() string {
	if n.kind == DataNode {
		return fmt.Sprintf("Data(%s)", hex.EncodeToString(n.value))
	}
	return fmt.Sprintf("Hash(%s)", hex.EncodeToString(n.value))
}
