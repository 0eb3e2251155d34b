package cmd

import (
	"encoding/hex"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var iterations uint64
var baseHex string

var generateCmd = &cobra.Command{
	Use:   "generate <input>",
	Short: "Computes a VDF output and proof for the input, printed as hex",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var base []byte
		if baseHex != "" {
			var err error
			if base, err = hex.DecodeString(baseHex); err != nil {
				return errors.Wrap(err, "invalid base")
			}
		}

		ctx, cancel := signal.NotifyContext(
			cmd.Context(),
			syscall.SIGINT,
			syscall.SIGTERM,
		)
		defer cancel()

		out, err := Engine.GenerateFrom(
			ctx,
			[]byte(args[0]),
			base,
			iterations,
			intSizeBits,
		)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
		return nil
	},
}

func init() {
	generateCmd.Flags().Uint64VarP(
		&iterations,
		"iterations",
		"t",
		1000,
		"number of sequential squarings",
	)
	generateCmd.Flags().StringVar(
		&baseHex,
		"base",
		"",
		"hex encoded element to continue from (the y half of a previous output)",
	)
	rootCmd.AddCommand(generateCmd)
}
