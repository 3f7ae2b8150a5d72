package main

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-mmr/nodestore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the log and record its identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := nodestore.OpenLevelDBStore(logger.Sugar.WithServiceName("mmrctl"), cfg.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			logID, err := resolveLogID(store.DB(), cfg.logID)
			if err != nil {
				return err
			}
			if logID == "" {
				logID = uuid.NewString()
			}
			if err = store.DB().Put(logIDKey, []byte(logID), nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "log-id: %s\n", logID)
			return nil
		},
	}
}
