package cmd

import (
	"encoding/json"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/paw-chain/swap/app"
)

const flagOutputDocument = "output-document"

// ExportCmd dumps the ledgers and the pool as a genesis document.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export state to a genesis document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := app.OpenDB(cfg.DB)
			if err != nil {
				return err
			}
			swapApp, err := app.NewSwapApp(log.NewNopLogger(), db, cfg, nil)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer swapApp.Close()

			gs, err := swapApp.ExportGenesis(cmd.Context())
			if err != nil {
				return err
			}

			if out, _ := cmd.Flags().GetString(flagOutputDocument); out != "" {
				return app.WriteGenesisFile(out, gs)
			}
			bz, err := json.MarshalIndent(gs, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(bz))
			return nil
		},
	}

	cmd.Flags().String(flagOutputDocument, "", "write the genesis to this file instead of stdout")
	return cmd
}
