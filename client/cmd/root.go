package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/app"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/config"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/engine"
)

var configDirectory string
var debug bool
var intSizeBits int
var NodeConfig *config.Config
var Engine *engine.Engine

var rootCmd = &cobra.Command{
	Use:   "vdf",
	Short: "Wesolowski verifiable delay function tool",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		NodeConfig, err = config.LoadConfig(configDirectory)
		if err != nil {
			return errors.Wrapf(err, "invalid config directory %s", configDirectory)
		}

		if intSizeBits == 0 {
			intSizeBits = NodeConfig.Engine.IntSizeBits
		}

		if debug {
			Engine, err = app.NewDebugEngine(NodeConfig)
		} else {
			Engine, err = app.NewEngine(NodeConfig)
		}

		return err
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configDirectory,
		"config",
		".config/",
		"config directory (default is .config/)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&debug,
		"debug",
		false,
		"logs at debug level to stderr",
	)
	rootCmd.PersistentFlags().IntVar(
		&intSizeBits,
		"bits",
		0,
		"size of the group modulus in bits (defaults to the configured intSizeBits)",
	)
}
