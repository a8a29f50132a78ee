// Package app wires the token ledgers and the swap pool into one process.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	swapkeeper "github.com/paw-chain/swap/x/swap/keeper"
	tokenkeeper "github.com/paw-chain/swap/x/token/keeper"
)

// AppName is the daemon name and the goleveldb database name.
const AppName = "swapd"

// DefaultNodeHome is the default home directory for the application daemon.
var DefaultNodeHome string

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	DefaultNodeHome = filepath.Join(userHomeDir, "."+AppName)
}

// SwapApp owns the state DB and the keepers built on it.
type SwapApp struct {
	logger log.Logger
	db     dbm.DB

	TokenKeepers [2]*tokenkeeper.Keeper
	SwapKeeper   *swapkeeper.Keeper
	Metrics      *swapkeeper.SwapMetrics
}

// OpenDB opens the configured state backend.
func OpenDB(cfg DBConfig) (dbm.DB, error) {
	switch cfg.Backend {
	case BackendMemDB:
		return dbm.NewMemDB(), nil
	case BackendGoLevelDB:
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		db, err := dbm.NewGoLevelDB(AppName, cfg.Dir, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open goleveldb at %s: %w", cfg.Dir, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db backend %q", cfg.Backend)
	}
}

// NewSwapApp builds the token ledgers named in cfg and the pool trading them.
// Metrics are registered with reg; a nil reg disables metrics.
func NewSwapApp(logger log.Logger, db dbm.DB, cfg Config, reg prometheus.Registerer) (*SwapApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &SwapApp{logger: logger, db: db}
	for i, t := range cfg.Tokens {
		k, err := tokenkeeper.NewKeeper(db, t.Metadata(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open token %s: %w", t.Symbol, err)
		}
		app.TokenKeepers[i] = k
	}

	if reg != nil {
		app.Metrics = swapkeeper.NewSwapMetrics(reg)
	}

	k, err := swapkeeper.NewKeeper(db, app.TokenKeepers[0], app.TokenKeepers[1], logger, app.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	app.SwapKeeper = k

	logger.Info("swap app ready",
		"pool", k.Address().Hex(),
		"token0", app.TokenKeepers[0].Metadata().Symbol,
		"token1", app.TokenKeepers[1].Metadata().Symbol,
		"initialized", k.IsInitialized(context.Background()),
	)
	return app, nil
}

// Logger returns the app logger.
func (app *SwapApp) Logger() log.Logger {
	return app.logger
}

// DB returns the state DB.
func (app *SwapApp) DB() dbm.DB {
	return app.db
}

// Token returns the ledger named by id, a hex address or a symbol, if it is
// one of the pair.
func (app *SwapApp) Token(id string) (*tokenkeeper.Keeper, bool) {
	for _, k := range app.TokenKeepers {
		if common.IsHexAddress(id) && common.HexToAddress(id) == k.Address() {
			return k, true
		}
		if strings.EqualFold(id, k.Metadata().Symbol) {
			return k, true
		}
	}
	return nil, false
}

// Close releases the DB.
func (app *SwapApp) Close() error {
	return app.db.Close()
}
