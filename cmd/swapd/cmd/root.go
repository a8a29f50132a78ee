// Package cmd implements the swapd command line.
package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paw-chain/swap/app"
)

const flagHome = "home"

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewRootCmd creates the swapd root command. It is called once in the main
// function.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   app.AppName,
		Short: "Constant-product swap pool daemon",
		Long: `swapd runs a two-token constant-product liquidity pool with its token
ledgers, and serves it over an HTTP/JSON API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")

	rootCmd.AddCommand(
		InitCmd(),
		StartCmd(),
		ExportCmd(),
		VersionCmd(),
	)
	return rootCmd
}

func homeDir(cmd *cobra.Command) string {
	home, _ := cmd.Flags().GetString(flagHome)
	return home
}

// GenesisPath is the genesis document under home.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// loadConfig reads home's app.toml with the command's flags and SWAP_*
// environment on top.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	v, err := app.NewViper(cmd.Flags())
	if err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(v, homeDir(cmd))
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}
