package main

import (
	"fmt"
	"strconv"

	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/spf13/cobra"
)

func newConsistencyCmd(cfg *config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "consistency <from-leaf-count> [to-leaf-count]",
		Short: "Write a proof that the log extends an earlier state",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("from leaf count: %w", err)
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			to := e.acc.LeafCount()
			if len(args) == 2 {
				if to, err = strconv.ParseUint(args[1], 10, 64); err != nil {
					return fmt.Errorf("to leaf count: %w", err)
				}
			}

			cp, err := e.acc.ConsistencyProof(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			rootA, err := e.acc.RootAt(from)
			if err != nil {
				return err
			}
			rootB, err := e.acc.RootAt(to)
			if err != nil {
				return err
			}
			e.log.Debugf("consistency: %d -> %d", from, to)
			fmt.Fprintf(cmd.ErrOrStderr(), "root-a: %x\nroot-b: %x\n", rootA, rootB)

			codec, err := newFileCodec()
			if err != nil {
				return err
			}
			data, err := codec.MarshalCBOR(cp)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "proof file, printed as hex if not set")
	return cmd
}

func newVerifyConsistencyCmd(cfg *config) *cobra.Command {
	var rootAHex, rootBHex, proofHex string

	cmd := &cobra.Command{
		Use:   "verify-consistency [proof-file | -]",
		Short: "Verify a proof written by consistency against two roots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args, proofHex)
			if err != nil {
				return err
			}
			codec, err := newFileCodec()
			if err != nil {
				return err
			}
			var cp mmr.ConsistencyProof
			if err = codec.UnmarshalInto(data, &cp); err != nil {
				return err
			}
			hasher, err := mmr.HasherByName(cfg.hasher)
			if err != nil {
				return err
			}
			rootA, err := decodeHex(rootAHex)
			if err != nil {
				return err
			}
			rootB, err := decodeHex(rootBHex)
			if err != nil {
				return err
			}
			if err = mmr.VerifyConsistency(hasher, cp, rootA, rootB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "consistent: %d -> %d leaves\n", cp.LeafCountA, cp.LeafCountB)
			return nil
		},
	}
	cmd.Flags().StringVar(&rootAHex, "root-a", "", "hex root of the earlier state")
	cmd.Flags().StringVar(&rootBHex, "root-b", "", "hex root of the later state")
	cmd.Flags().StringVar(&proofHex, "hex", "", "the proof as printed by consistency")
	_ = cmd.MarkFlagRequired("root-a")
	_ = cmd.MarkFlagRequired("root-b")
	return cmd
}
