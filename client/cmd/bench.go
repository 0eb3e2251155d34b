package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var benchIterations []uint

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measures generation and verification time across iteration counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := []byte("bench")
		data := make([][]string, 0, len(benchIterations))

		var previous time.Duration
		for _, t := range benchIterations {
			start := time.Now()
			out, err := Engine.Generate(cmd.Context(), seed, uint64(t), intSizeBits)
			if err != nil {
				return err
			}
			eGen := time.Since(start)

			start = time.Now()
			ok, err := Engine.Verify(seed, out, uint64(t), intSizeBits)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("bench: output for %d iterations rejected", t)
			}
			eVerify := time.Since(start)

			ratio := "-"
			if previous > 0 {
				ratio = fmt.Sprintf("%.2f", float64(eGen)/float64(previous))
			}
			previous = eGen

			data = append(data, []string{
				strconv.FormatUint(uint64(t), 10),
				eGen.Round(time.Millisecond).String(),
				eVerify.Round(time.Microsecond).String(),
				ratio,
			})
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"iterations", "generate", "verify", "generate ratio"})
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()

		return nil
	},
}

func init() {
	benchCmd.Flags().UintSliceVar(
		&benchIterations,
		"iterations",
		[]uint{1000, 2000, 4000},
		"iteration counts to measure",
	)
	rootCmd.AddCommand(benchCmd)
}
