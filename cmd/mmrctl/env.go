package main

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/archive"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/datatrails/go-datatrails-mmr/nodestore"
	"github.com/syndtr/goleveldb/leveldb"
)

var logIDKey = []byte("mmrctl/log-id")

type config struct {
	dataDir           string
	hasher            string
	archiveDir        string
	blobContainer     string
	blobAccount       string
	blobResourceGroup string
	blobSubscription  string
	blobEmulator      bool
	logID             string
	pruneLeaves       bool
	noSync            bool
	logLevel          string
}

// env is the opened log a command works on
type env struct {
	log    logger.Logger
	hasher mmr.Hasher
	store  *nodestore.LevelDBStore
	acc    *mmr.Accumulator
	storer *azblob.Storer
	logID  string

	closers []func() error
}

func openEnv(cfg *config) (*env, error) {
	e := &env{log: logger.Sugar.WithServiceName("mmrctl")}

	var err error
	if e.hasher, err = mmr.HasherByName(cfg.hasher); err != nil {
		return nil, err
	}

	var storeOpts []nodestore.StoreOption
	if cfg.noSync {
		storeOpts = append(storeOpts, nodestore.WithNoSync())
	}
	if e.store, err = nodestore.OpenLevelDBStore(e.log, cfg.dataDir, storeOpts...); err != nil {
		return nil, err
	}
	e.closers = append(e.closers, e.store.Close)

	if e.logID, err = resolveLogID(e.store.DB(), cfg.logID); err != nil {
		e.Close()
		return nil, err
	}

	if cfg.blobContainer != "" {
		if e.storer, err = connectStorer(cfg); err != nil {
			e.Close()
			return nil, fmt.Errorf("connect blob container %s: %w", cfg.blobContainer, err)
		}
	}

	arch, err := e.openArchive(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}

	var accOpts []mmr.AccumulatorOption
	if arch != nil {
		accOpts = append(accOpts, mmr.WithArchive(arch))
	}
	if cfg.pruneLeaves {
		accOpts = append(accOpts, mmr.WithLeafPruning())
	}
	if e.acc, err = mmr.NewAccumulator(e.log, e.store, e.hasher, accOpts...); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// openArchive selects the leaf archive. Blob storage is preferred, then a
// separate database, and pruned logs otherwise share the node store database.
func (e *env) openArchive(cfg *config) (mmr.Archive, error) {
	switch {
	case e.storer != nil:
		return archive.NewBlobArchive(e.log, e.storer, e.logID)
	case cfg.archiveDir != "":
		var opts []archive.ArchiveOption
		if cfg.noSync {
			opts = append(opts, archive.WithNoSync())
		}
		a, err := archive.OpenLevelDBArchive(e.log, cfg.archiveDir, opts...)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, a.Close)
		return a, nil
	case cfg.pruneLeaves:
		return archive.NewLevelDBArchive(e.log, e.store.DB()), nil
	}
	return nil, nil
}

// connectStorer connects to the blob container. Storage accounts are
// authorized from the azure environment, the emulator uses the well known
// azurite account unless the AZURE_STORAGE_* variables override it.
func connectStorer(cfg *config) (*azblob.Storer, error) {
	if cfg.blobEmulator {
		return azblob.NewDev(azblob.NewDevConfigFromEnv(), cfg.blobContainer)
	}
	return azblob.New(cfg.blobAccount, cfg.blobResourceGroup, cfg.blobSubscription, cfg.blobContainer)
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Infof("close: %v", err)
		}
	}
	e.closers = nil
}

// resolveLogID returns the log identity given on the command line, or the one
// recorded by init.
func resolveLogID(db *leveldb.DB, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	id, err := db.Get(logIDKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(id), nil
}
