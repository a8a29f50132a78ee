package keeper

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/paw-chain/swap/x/token/types"
)

// Keeper is the ledger of a single fungible token. Balances and allowances
// are persisted under the token's own prefix; every mutation is written as
// one batch so a transfer either lands completely or not at all.
type Keeper struct {
	db     dbm.DB
	prefix []byte
	meta   types.Metadata
	logger log.Logger

	mu sync.RWMutex
}

// NewKeeper opens the ledger of the token described by meta inside db.
func NewKeeper(db dbm.DB, meta types.Metadata, logger log.Logger) (*Keeper, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	prefix := types.StorePrefix(meta.Address)
	k := &Keeper{
		db:     dbm.NewPrefixDB(db, prefix),
		prefix: prefix,
		meta:   meta,
		logger: logger.With("module", "x/"+types.ModuleName, "token", meta.Symbol),
	}

	bz, err := marshalJSON(meta)
	if err != nil {
		return nil, err
	}
	if err := k.db.Set(types.MetadataKey, bz); err != nil {
		return nil, fmt.Errorf("NewKeeper: save metadata: %w", err)
	}
	return k, nil
}

// Address returns the token's address.
func (k *Keeper) Address() common.Address {
	return k.meta.Address
}

// Metadata returns the token's descriptive metadata.
func (k *Keeper) Metadata() types.Metadata {
	return k.meta
}

// BalanceOf returns owner's balance, zero if never funded.
func (k *Keeper) BalanceOf(ctx context.Context, owner common.Address) (math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.getInt(types.GetBalanceKey(owner))
}

// Allowance returns how much spender may still move out of owner's balance.
func (k *Keeper) Allowance(ctx context.Context, owner, spender common.Address) (math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.getInt(types.GetAllowanceKey(owner, spender))
}

// TotalSupply returns the amount minted so far.
func (k *Keeper) TotalSupply(ctx context.Context) (math.Int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.getInt(types.TotalSupplyKey)
}

// Transfer moves amount from the sender's own balance to to.
func (k *Keeper) Transfer(ctx context.Context, from, to common.Address, amount math.Int) error {
	if err := validateTransfer(to, amount); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := k.move(batch, from, to, amount); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("Transfer: commit: %w", err)
	}

	k.logger.Debug("transfer", "from", from.Hex(), "to", to.Hex(), "amount", amount.String())
	return nil
}

// TransferFrom moves amount from from to to on behalf of spender, consuming
// the allowance from granted to spender.
func (k *Keeper) TransferFrom(ctx context.Context, spender, from, to common.Address, amount math.Int) error {
	if err := validateTransfer(to, amount); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := k.spend(batch, spender, from, to, amount); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("TransferFrom: commit: %w", err)
	}

	k.logger.Debug("transfer from", "spender", spender.Hex(), "from", from.Hex(), "to", to.Hex(), "amount", amount.String())
	return nil
}

// StageTransfer checks a Transfer against the ledger and stages its writes
// into batch, which must come from the DB the ledger was opened in. The
// ledger stays write-locked until release is called; call it once the batch
// has been written or discarded. A ledger can be staged once per batch.
func (k *Keeper) StageTransfer(ctx context.Context, batch dbm.Batch, from, to common.Address, amount math.Int) (release func(), err error) {
	return k.stage(to, amount, func() error {
		return k.move(prefixed{batch, k.prefix}, from, to, amount)
	})
}

// StageTransferFrom is StageTransfer for TransferFrom.
func (k *Keeper) StageTransferFrom(ctx context.Context, batch dbm.Batch, spender, from, to common.Address, amount math.Int) (release func(), err error) {
	return k.stage(to, amount, func() error {
		return k.spend(prefixed{batch, k.prefix}, spender, from, to, amount)
	})
}

func (k *Keeper) stage(to common.Address, amount math.Int, fn func() error) (func(), error) {
	if err := validateTransfer(to, amount); err != nil {
		return nil, err
	}

	k.mu.Lock()
	if err := fn(); err != nil {
		k.mu.Unlock()
		return nil, err
	}

	var once sync.Once
	return func() { once.Do(k.mu.Unlock) }, nil
}

// Approve sets the allowance owner grants spender, replacing any previous value.
func (k *Keeper) Approve(ctx context.Context, owner, spender common.Address, amount math.Int) error {
	if spender == (common.Address{}) {
		return types.ErrInvalidAddress.Wrap("spender cannot be the zero address")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("approve %s", amount)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := setInt(batch, types.GetAllowanceKey(owner, spender), amount); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("Approve: commit: %w", err)
	}
	return nil
}

// Mint credits newly issued tokens to to. Used for genesis and tests.
// Minting past a 256-bit supply fails with ErrInvalidAmount.
func (k *Keeper) Mint(ctx context.Context, to common.Address, amount math.Int) error {
	if err := validateTransfer(to, amount); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	supply, err := k.getInt(types.TotalSupplyKey)
	if err != nil {
		return err
	}
	if supply, err = types.CheckedAdd(supply, amount); err != nil {
		return errors.Wrapf(err, "mint %s", k.meta.Symbol)
	}

	balanceKey := types.GetBalanceKey(to)
	balance, err := k.getInt(balanceKey)
	if err != nil {
		return err
	}
	// balance <= supply, so this cannot overflow once supply fits
	balance = balance.Add(amount)

	batch := k.db.NewBatch()
	defer batch.Close()

	if err := setInt(batch, balanceKey, balance); err != nil {
		return err
	}
	if err := setInt(batch, types.TotalSupplyKey, supply); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("Mint: commit: %w", err)
	}
	return nil
}

// spend stages a move that consumes spender's allowance. Caller holds the
// write lock.
func (k *Keeper) spend(w writer, spender, from, to common.Address, amount math.Int) error {
	allowance, err := k.checkAllowance(spender, from, amount)
	if err != nil {
		return err
	}
	if err := k.move(w, from, to, amount); err != nil {
		return err
	}
	return setInt(w, types.GetAllowanceKey(from, spender), allowance.Sub(amount))
}

// move debits from and credits to. Caller holds the write lock.
func (k *Keeper) move(w writer, from, to common.Address, amount math.Int) error {
	fromBalance, err := k.checkBalance(from, amount)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	toKey := types.GetBalanceKey(to)
	toBalance, err := k.getInt(toKey)
	if err != nil {
		return err
	}
	if err := setInt(w, types.GetBalanceKey(from), fromBalance.Sub(amount)); err != nil {
		return err
	}
	return setInt(w, toKey, toBalance.Add(amount))
}

func (k *Keeper) checkAllowance(spender, from common.Address, amount math.Int) (math.Int, error) {
	allowance, err := k.getInt(types.GetAllowanceKey(from, spender))
	if err != nil {
		return math.Int{}, err
	}
	if allowance.LT(amount) {
		return math.Int{}, types.ErrInsufficientAllowance.Wrapf("%s: spender %s allowed %s, need %s",
			k.meta.Symbol, spender.Hex(), allowance, amount)
	}
	return allowance, nil
}

func (k *Keeper) checkBalance(owner common.Address, amount math.Int) (math.Int, error) {
	balance, err := k.getInt(types.GetBalanceKey(owner))
	if err != nil {
		return math.Int{}, err
	}
	if balance.LT(amount) {
		return math.Int{}, types.ErrInsufficientBalance.Wrapf("%s: %s has %s, need %s",
			k.meta.Symbol, owner.Hex(), balance, amount)
	}
	return balance, nil
}

func validateTransfer(to common.Address, amount math.Int) error {
	if to == (common.Address{}) {
		return types.ErrInvalidAddress.Wrap("recipient cannot be the zero address")
	}
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("transfer %s", amount)
	}
	return nil
}
