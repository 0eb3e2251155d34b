package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errInvalidProof = errors.New("invalid proof")

var verifyCmd = &cobra.Command{
	Use:   "verify <input> <output hex>",
	Short: "Verifies a VDF output for the input",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var base []byte
		if baseHex != "" {
			var err error
			if base, err = hex.DecodeString(baseHex); err != nil {
				return errors.Wrap(err, "invalid base")
			}
		}

		output, err := hex.DecodeString(args[1])
		if err != nil {
			output = nil
		}

		ok, err := Engine.VerifyFrom(
			[]byte(args[0]),
			base,
			output,
			iterations,
			intSizeBits,
		)
		if err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "invalid")
			return errInvalidProof
		}

		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	},
}

func init() {
	verifyCmd.Flags().Uint64VarP(
		&iterations,
		"iterations",
		"t",
		1000,
		"number of sequential squarings",
	)
	verifyCmd.Flags().StringVar(
		&baseHex,
		"base",
		"",
		"hex encoded element the output was generated from",
	)
	rootCmd.AddCommand(verifyCmd)
}
