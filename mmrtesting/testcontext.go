package mmrtesting

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	TestGenerator
	Log    logger.Logger
	Storer *azblob.Storer
	T      *testing.T
}

type TestConfig struct {
	Seed            int64
	TestLabelPrefix string
	LogID           string // can be ""
	Container       string // can be "" defaults to TestLabelPrefix
}

func NewContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		TestGenerator: NewTestGenerator(
			t, TestGeneratorConfig{
				Seed:            cfg.Seed,
				TestLabelPrefix: cfg.TestLabelPrefix,
				LogID:           cfg.LogID,
			},
		),
		T: t,
	}
	logger.New("TEST")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

// NewBlobContext returns a TestContext connected to the blob store emulator
// (azurite) configured in the environment.
func NewBlobContext(t *testing.T, cfg TestConfig) TestContext {
	c := NewContext(t, cfg)

	container := cfg.Container
	if container == "" {
		container = cfg.TestLabelPrefix
	}

	var err error
	c.Storer, err = azblob.NewDev(azblob.NewDevConfigFromEnv(), container)
	if err != nil {
		t.Fatalf("failed to connect to blob store emulator: %v", err)
	}
	client := c.Storer.GetServiceClient()
	// Note: we expect a 'already exists' error here and  ignore it.
	_, _ = client.CreateContainer(context.Background(), container, nil)

	return c
}

// AppendLeaves appends n generated ledger leaves to acc and returns them
func (c *TestContext) AppendLeaves(acc *mmr.Accumulator, n int) []mmr.Node {
	leaves := c.LeafNodes(n)
	for _, leaf := range leaves {
		_, err := acc.Append(context.Background(), leaf)
		require.NoError(c.T, err)
	}
	return leaves
}

func (c *TestContext) DeleteBlobsByPrefix(blobPrefixPath string) {
	var err error
	var r *azblob.ListerResponse
	var blobs []string

	var marker azblob.ListMarker
	for {
		r, err = c.Storer.List(
			context.Background(),
			azblob.WithListPrefix(blobPrefixPath), azblob.WithListMarker(marker))

		require.NoError(c.T, err)

		for _, i := range r.Items {
			blobs = append(blobs, *i.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	for _, blobPath := range blobs {
		err = c.Storer.Delete(context.Background(), blobPath)
		require.NoError(c.T, err)
	}
}
