package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	swaptypes "github.com/paw-chain/swap/x/swap/types"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

// genesisMarkerKey records that a genesis document was imported into the DB.
var genesisMarkerKey = []byte("app/genesis_imported")

// GenesisState holds each module's genesis keyed by module name.
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState returns empty ledgers for the configured tokens and
// the configured pool params.
func NewDefaultGenesisState(cfg Config) (GenesisState, error) {
	tokens := make([]tokentypes.GenesisState, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		tokens = append(tokens, tokentypes.GenesisState{Metadata: t.Metadata()})
	}

	swapGenesis := swaptypes.DefaultGenesis()
	swapGenesis.Params = cfg.SwapParams()

	genesis := make(GenesisState)
	if err := genesis.set(tokentypes.ModuleName, tokens); err != nil {
		return nil, err
	}
	if err := genesis.set(swaptypes.ModuleName, swapGenesis); err != nil {
		return nil, err
	}
	return genesis, nil
}

func (gs GenesisState) set(module string, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s genesis: %w", module, err)
	}
	gs[module] = bz
	return nil
}

// Decode splits the genesis into module states.
func (gs GenesisState) Decode() ([]tokentypes.GenesisState, *swaptypes.GenesisState, error) {
	var tokens []tokentypes.GenesisState
	if bz, ok := gs[tokentypes.ModuleName]; ok {
		if err := json.Unmarshal(bz, &tokens); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s genesis: %w", tokentypes.ModuleName, err)
		}
	}

	swapGenesis := swaptypes.DefaultGenesis()
	if bz, ok := gs[swaptypes.ModuleName]; ok {
		if err := json.Unmarshal(bz, swapGenesis); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s genesis: %w", swaptypes.ModuleName, err)
		}
	}
	return tokens, swapGenesis, nil
}

// ReadGenesisFile loads a genesis document from path.
func ReadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis: %w", err)
	}
	var gs GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("failed to decode genesis: %w", err)
	}
	return gs, nil
}

// WriteGenesisFile writes gs to path.
func WriteGenesisFile(path string, gs GenesisState) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode genesis: %w", err)
	}
	return os.WriteFile(path, bz, 0o600)
}

// InitGenesis loads the token ledgers, then the pool. Ledgers must match the
// configured tokens one to one.
func (app *SwapApp) InitGenesis(ctx context.Context, gs GenesisState) error {
	tokens, swapGenesis, err := gs.Decode()
	if err != nil {
		return err
	}

	if len(tokens) != len(app.TokenKeepers) {
		return fmt.Errorf("genesis holds %d token ledgers, expected %d", len(tokens), len(app.TokenKeepers))
	}
	for _, tg := range tokens {
		k, ok := app.Token(tg.Metadata.Address.Hex())
		if !ok {
			return tokentypes.ErrUnknownToken.Wrapf("genesis token %s (%s)", tg.Metadata.Symbol, tg.Metadata.Address.Hex())
		}
		if err := k.InitGenesis(ctx, tg); err != nil {
			return fmt.Errorf("token %s: %w", tg.Metadata.Symbol, err)
		}
	}

	if err := app.SwapKeeper.InitGenesis(ctx, *swapGenesis); err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	if err := app.db.SetSync(genesisMarkerKey, []byte{1}); err != nil {
		return fmt.Errorf("failed to record genesis import: %w", err)
	}

	app.logger.Info("genesis imported",
		"tokens", len(tokens),
		"pool_initialized", app.SwapKeeper.IsInitialized(ctx),
	)
	return nil
}

// HasGenesis reports whether a genesis document was already imported.
func (app *SwapApp) HasGenesis() (bool, error) {
	return app.db.Has(genesisMarkerKey)
}

// ExportGenesis exports every module's state.
func (app *SwapApp) ExportGenesis(ctx context.Context) (GenesisState, error) {
	tokens := make([]tokentypes.GenesisState, 0, len(app.TokenKeepers))
	for _, k := range app.TokenKeepers {
		tg, err := k.ExportGenesis(ctx)
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", k.Metadata().Symbol, err)
		}
		tokens = append(tokens, *tg)
	}

	swapGenesis, err := app.SwapKeeper.ExportGenesis(ctx)
	if err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}

	genesis := make(GenesisState)
	if err := genesis.set(tokentypes.ModuleName, tokens); err != nil {
		return nil, err
	}
	if err := genesis.set(swaptypes.ModuleName, swapGenesis); err != nil {
		return nil, err
	}
	return genesis, nil
}
