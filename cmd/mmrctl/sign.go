package main

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-mmr/signedroots"
	"github.com/spf13/cobra"
)

var (
	ErrNoPEMKey = errors.New("no PEM encoded EC private key found")
)

func newSignCmd(cfg *config) *cobra.Command {
	var keyPath, out string
	var signerCfg signedroots.RootSignerConfig
	var publish bool

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign the current root",
		Long: `Sign the current root with an EC private key. The signed root is written
to --out, or published to the blob container with --publish. The root itself is
detached from the signed message, verifiers recover it from the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := loadRootSigner(keyPath, signerCfg)
			if err != nil {
				return err
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			msg, state, err := rs.SignAccumulator(e.acc, time.Now().Unix(), nil)
			if err != nil {
				return err
			}

			if publish {
				if e.storer == nil {
					return errors.New("--publish requires --blob-container")
				}
				store, err := signedroots.NewSignedRootStore(e.log, e.storer, rs.Codec(), e.logID)
				if err != nil {
					return err
				}
				if err = store.Put(cmd.Context(), state, msg); err != nil {
					return err
				}
			}
			if out != "" || !publish {
				if err = writeOutput(cmd.OutOrStdout(), out, msg); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "signed: leaves %d, root %x\n", state.LeafCount, state.Root)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "PEM file holding the EC private key")
	cmd.Flags().StringVarP(&out, "out", "o", "", "signed root file, printed as hex if not set")
	cmd.Flags().StringVar(&signerCfg.Issuer, "issuer", "", "CWT issuer claim")
	cmd.Flags().StringVar(&signerCfg.Subject, "subject", "", "CWT subject claim")
	cmd.Flags().StringVar(&signerCfg.KeyIdentifier, "kid", "", "key identifier")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the signed root to the blob container")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newVerifyRootCmd(cfg *config) *cobra.Command {
	var latest bool
	var signedHex string

	cmd := &cobra.Command{
		Use:   "verify-root [signed-root-file | -]",
		Short: "Verify a signed root against the local log",
		Long: `Verify a signed root against the root the local log had at the signed leaf
count. The signed root is read from a file, from stdin given "-", or from
--hex. With --latest the most recently published signed root is read from the
blob container instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := signedroots.NewRootSignerCodec()
			if err != nil {
				return err
			}

			e, err := openEnv(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			var signed *dtcose.CoseSign1Message
			var state signedroots.MMRState
			switch {
			case latest:
				if e.storer == nil {
					return errors.New("--latest requires --blob-container")
				}
				store, err := signedroots.NewSignedRootStore(e.log, e.storer, codec, e.logID)
				if err != nil {
					return err
				}
				if signed, state, _, err = store.Latest(cmd.Context()); err != nil {
					return err
				}
			default:
				data, err := readInput(cmd, args, signedHex)
				if err != nil {
					return err
				}
				if signed, state, err = signedroots.DecodeSignedRoot(codec, data); err != nil {
					return err
				}
			}

			err = signedroots.VerifyAccumulatorRoot(
				codec, dtcose.NewCWTPublicKeyProvider(signed), e.acc, signed, state, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified: leaves %d, signed at %s\n",
				state.LeafCount, time.Unix(state.Timestamp, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "verify the latest published signed root")
	cmd.Flags().StringVar(&signedHex, "hex", "", "the signed root as printed by sign")
	return cmd
}

// loadRootSigner reads a PEM encoded EC private key, as written by
// "openssl ecparam -genkey", and returns a signer for it.
func loadRootSigner(path string, cfg signedroots.RootSignerConfig) (signedroots.RootSigner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return signedroots.RootSigner{}, err
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return signedroots.RootSigner{}, fmt.Errorf("%w: %s", ErrNoPEMKey, path)
		}
		if block.Type != "EC PRIVATE KEY" {
			continue
		}
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return signedroots.RootSigner{}, err
		}
		return signedroots.NewRootSignerForECPrivateKey(cfg, *key)
	}
}
