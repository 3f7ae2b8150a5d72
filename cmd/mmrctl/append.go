package main

import (
	"encoding/hex"
	"fmt"

	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/spf13/cobra"
)

func newAppendCmd(cfg *config) *cobra.Command {
	var hexData, ledger bool

	cmd := &cobra.Command{
		Use:   "append [data...]",
		Short: "Append each argument as a leaf",
		Long: `Append each argument as a leaf. With --ledger each argument is the hex
parent hash of a block and the leaf is the ledger leaf for the next height.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			codec, err := mmr.NewLeafCodec()
			if err != nil {
				return err
			}

			for _, arg := range args {
				var leaf mmr.Node
				switch {
				case ledger:
					parent, err := hex.DecodeString(arg)
					if err != nil {
						return fmt.Errorf("parent hash %q: %w", arg, err)
					}
					leaf, err = mmr.EncodeLeaf(codec, mmr.LedgerLeaf{Height: e.acc.LeafCount(), ParentHash: parent})
					if err != nil {
						return err
					}
				case hexData:
					data, err := hex.DecodeString(arg)
					if err != nil {
						return fmt.Errorf("leaf %q: %w", arg, err)
					}
					leaf = mmr.NewDataNode(data)
				default:
					leaf = mmr.NewDataNode([]byte(arg))
				}

				i, err := e.acc.Append(cmd.Context(), leaf)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "leaf %d at %d\n", e.acc.LeafCount()-1, i)
			}
			leafCount, root := e.acc.Head()
			fmt.Fprintf(cmd.OutOrStdout(), "leaves: %d\nroot: %x\n", leafCount, root)
			return nil
		},
	}
	cmd.Flags().BoolVar(&hexData, "hex", false, "arguments are hex encoded")
	cmd.Flags().BoolVar(&ledger, "ledger", false, "arguments are block parent hashes")
	return cmd
}
