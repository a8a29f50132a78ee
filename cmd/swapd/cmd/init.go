package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paw-chain/swap/app"
)

const flagOverwrite = "overwrite"

// InitCmd writes the default app.toml and a genesis document for the
// configured token pair.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and genesis files",
		Long: `Write config/app.toml and config/genesis.json under --home.

Example:
  swapd init --home ~/.swapd
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := homeDir(cmd)
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)

			genFile := GenesisPath(home)
			if !overwrite && fileExists(genFile) {
				return fmt.Errorf("genesis.json file already exists: %v", genFile)
			}

			configFile, err := app.WriteDefaultConfig(home, overwrite)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			gs, err := app.NewDefaultGenesisState(cfg)
			if err != nil {
				return err
			}
			if err := app.WriteGenesisFile(genFile, gs); err != nil {
				return err
			}

			cmd.Printf("Wrote %s\nWrote %s\n", configFile, genFile)
			return nil
		},
	}

	cmd.Flags().BoolP(flagOverwrite, "o", false, "overwrite existing config and genesis files")
	return cmd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
