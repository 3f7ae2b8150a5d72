package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-mmr/mmr"
	"github.com/spf13/cobra"
)

var (
	ErrInputRequired  = errors.New("an input file or --hex is required")
	ErrInputAmbiguous = errors.New("give either an input file or --hex, not both")
)

// leafProof is the file format written by prove and read by verify
type leafProof struct {
	Leaf  []byte    `cbor:"1,keyasint"`
	Proof mmr.Proof `cbor:"2,keyasint"`
}

func newFileCodec() (dtcbor.CBORCodec, error) {
	return dtcbor.NewCBORCodec(dtcbor.NewDeterministicEncOpts(), dtcbor.NewDeterministicDecOpts())
}

// writeOutput writes data to path, or prints it as hex to w if path is ""
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readInput returns the output of writeOutput, given either as hexValue or as
// the single argument in args. The argument "-" reads the file from stdin.
func readInput(cmd *cobra.Command, args []string, hexValue string) ([]byte, error) {
	switch {
	case hexValue != "" && len(args) > 0:
		return nil, ErrInputAmbiguous
	case hexValue != "":
		return decodeHex(strings.TrimSpace(hexValue))
	case len(args) == 0:
		return nil, ErrInputRequired
	case args[0] == "-":
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hex %q: %w", s, err)
	}
	return b, nil
}
