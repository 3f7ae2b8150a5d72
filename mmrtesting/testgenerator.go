package mmrtesting

import (
	"math/rand"
	"testing"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	ParentHashBytes = 32
)

type TestGeneratorConfig struct {
	// The generator is seeded with Seed. It is normal to force it to some
	// fixed value so that the generated data is the same from run to run.
	Seed            int64
	TestLabelPrefix string
	LogID           string // can be "", a random id is generated
}

// TestGenerator produces repeatable ledger leaves and log identities
type TestGenerator struct {
	T      *testing.T
	Cfg    TestGeneratorConfig
	Codec  dtcbor.CBORCodec
	rng    *rand.Rand
	height uint64
}

func NewTestGenerator(t *testing.T, cfg TestGeneratorConfig) TestGenerator {
	codec, err := mmr.NewLeafCodec()
	require.NoError(t, err)
	g := TestGenerator{
		T:     t,
		Cfg:   cfg,
		Codec: codec,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	if g.Cfg.LogID == "" {
		g.Cfg.LogID = g.NewRandomUUIDString(t)
	}
	return g
}

func (g *TestGenerator) NewRandomUUIDString(t *testing.T) string {
	id, err := uuid.NewRandomFromReader(g.rng)
	require.NoError(t, err)
	return id.String()
}

// NextLeaf returns the ledger leaf for the next block height
func (g *TestGenerator) NextLeaf() mmr.LedgerLeaf {
	parent := make([]byte, ParentHashBytes)
	_, _ = g.rng.Read(parent)
	leaf := mmr.LedgerLeaf{Height: g.height, ParentHash: parent}
	g.height++
	return leaf
}

// LeafNodes returns the encoded nodes of the next n ledger leaves
func (g *TestGenerator) LeafNodes(n int) []mmr.Node {
	nodes := make([]mmr.Node, 0, n)
	for i := 0; i < n; i++ {
		node, err := mmr.EncodeLeaf(g.Codec, g.NextLeaf())
		require.NoError(g.T, err)
		nodes = append(nodes, node)
	}
	return nodes
}
