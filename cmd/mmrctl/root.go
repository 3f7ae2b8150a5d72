package main

import (
	"fmt"

	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *config) *cobra.Command {
	var leafCount uint64

	cmd := &cobra.Command{
		Use:   "root",
		Short: "Print the root, or the root at an earlier leaf count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			n, root := e.acc.Head()
			if cmd.Flags().Changed("leaf-count") {
				n = leafCount
				if root, err = e.acc.RootAt(leafCount); err != nil {
					return err
				}
			}
			peaks, err := e.acc.PeakHashes()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "leaves: %d\nsize: %d\nroot: %x\n", n, mmr.MMRSize(n), root)
			if n == e.acc.LeafCount() {
				for i, p := range peaks {
					fmt.Fprintf(out, "peak %d: %x\n", i, p)
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&leafCount, "leaf-count", 0, "report the root the log had with this many leaves")
	return cmd
}
