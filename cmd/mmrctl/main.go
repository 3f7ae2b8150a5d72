package main

import (
	"fmt"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/spf13/cobra"
)

func newMMRCtlCmd() *cobra.Command {
	cfg := &config{}

	var rootCmd = &cobra.Command{
		Use:   "mmrctl",
		Short: "Append to, prove against and sign a merkle mountain range log",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.New(cfg.logLevel)
		},
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.dataDir, "data-dir", "mmrdata", "directory of the node store database")
	flags.StringVar(&cfg.hasher, "hasher", "blake2b-256", "node hash: blake2b-256, keccak-256 or sha-256")
	flags.StringVar(&cfg.archiveDir, "archive-dir", "", "directory of a separate leaf archive database")
	flags.StringVar(&cfg.blobContainer, "blob-container", "", "archive leaves and publish signed roots to this blob container")
	flags.StringVar(&cfg.blobAccount, "blob-account", "", "azure storage account of the blob container")
	flags.StringVar(&cfg.blobResourceGroup, "blob-resource-group", "", "azure resource group of the storage account")
	flags.StringVar(&cfg.blobSubscription, "blob-subscription", "", "azure subscription of the storage account")
	flags.BoolVar(&cfg.blobEmulator, "blob-emulator", false, "connect to the blob container on a local azurite emulator")
	flags.StringVar(&cfg.logID, "log-id", "", "identity of the log in blob storage (a uuid is generated by init)")
	flags.BoolVar(&cfg.pruneLeaves, "prune-leaves", false, "keep only leaf digests in the node store")
	flags.BoolVar(&cfg.noSync, "no-sync", false, "return from an append before it reaches stable storage")
	flags.StringVar(&cfg.logLevel, "log-level", "INFO", "log level")

	rootCmd.AddCommand(
		newInitCmd(cfg),
		newAppendCmd(cfg),
		newRootCmd(cfg),
		newProveCmd(cfg),
		newVerifyCmd(cfg),
		newConsistencyCmd(cfg),
		newVerifyConsistencyCmd(cfg),
		newSignCmd(cfg),
		newVerifyRootCmd(cfg),
	)
	return rootCmd
}

func main() {
	if err := newMMRCtlCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logger.OnExit()
		os.Exit(1)
	}
	logger.OnExit()
}
