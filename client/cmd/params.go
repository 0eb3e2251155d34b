package cmd

import (
	"encoding/hex"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/vdf"
)

var paramsCmd = &cobra.Command{
	Use:   "params <input>",
	Short: "Prints the group parameters derived from the input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := Engine.Group([]byte(args[0]), intSizeBits)
		if err != nil {
			return err
		}

		var modulus string
		switch group := g.(type) {
		case *vdf.ClassGroup:
			modulus = group.Discriminant().Text(16)
		case *vdf.RSAGroup:
			modulus = group.Modulus().Text(16)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"parameter", "value"})
		table.SetColWidth(80)
		table.AppendBulk([][]string{
			{"group", string(g.Kind())},
			{"bits", strconv.Itoa(g.Bits())},
			{"modulus", modulus},
			{"generator", hex.EncodeToString(g.Generator().Bytes())},
			{"element size", strconv.Itoa(g.ElementSize())},
			{"output size", strconv.Itoa(vdf.OutputSize(g))},
		})
		table.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
