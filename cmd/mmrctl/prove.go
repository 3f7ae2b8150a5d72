package main

import (
	"fmt"
	"strconv"

	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/spf13/cobra"
)

func newProveCmd(cfg *config) *cobra.Command {
	var leafCount uint64
	var out string

	cmd := &cobra.Command{
		Use:   "prove <leaf-index>",
		Short: "Write the leaf and its inclusion proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leafIndex, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("leaf index: %w", err)
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			var leaf mmr.Node
			var proof mmr.Proof
			if cmd.Flags().Changed("leaf-count") {
				leaf, proof, err = e.acc.GenerateProofAt(cmd.Context(), leafIndex, leafCount)
			} else {
				leaf, proof, err = e.acc.GenerateProof(cmd.Context(), leafIndex)
			}
			if err != nil {
				return err
			}

			codec, err := newFileCodec()
			if err != nil {
				return err
			}
			leafData, err := leaf.MarshalBinary()
			if err != nil {
				return err
			}
			data, err := codec.MarshalCBOR(leafProof{Leaf: leafData, Proof: proof})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().Uint64Var(&leafCount, "leaf-count", 0, "prove against the root at this leaf count")
	cmd.Flags().StringVarP(&out, "out", "o", "", "proof file, printed as hex if not set")
	return cmd
}

func newVerifyCmd(cfg *config) *cobra.Command {
	var rootHex, proofHex string

	cmd := &cobra.Command{
		Use:   "verify [proof-file | -]",
		Short: "Verify a proof written by prove",
		Long: `Verify a proof written by prove. The proof is read from a file, from stdin
given "-", or from --hex. The root is taken from --root, or is recovered from
the local log at the leaf count of the proof.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args, proofHex)
			if err != nil {
				return err
			}
			codec, err := newFileCodec()
			if err != nil {
				return err
			}
			var lp leafProof
			if err = codec.UnmarshalInto(data, &lp); err != nil {
				return err
			}
			leaf, err := mmr.UnmarshalNode(lp.Leaf)
			if err != nil {
				return err
			}

			hasher, err := mmr.HasherByName(cfg.hasher)
			if err != nil {
				return err
			}

			var root []byte
			if rootHex != "" {
				if root, err = decodeHex(rootHex); err != nil {
					return err
				}
			} else {
				e, err := openEnv(cfg)
				if err != nil {
					return err
				}
				defer e.Close()
				if root, err = e.acc.RootAt(lp.Proof.LeafCount); err != nil {
					return err
				}
			}

			if err = mmr.VerifyProof(hasher, root, leaf, lp.Proof); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified: leaf %d of %d, root %x\n",
				lp.Proof.LeafIndex, lp.Proof.LeafCount, root)
			return nil
		},
	}
	cmd.Flags().StringVar(&rootHex, "root", "", "hex root to verify against")
	cmd.Flags().StringVar(&proofHex, "hex", "", "the proof as printed by prove")
	return cmd
}
