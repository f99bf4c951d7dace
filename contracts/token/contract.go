package token

import (
	"github.com/chainvoice/invoice-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for circulation value
	CirculationKey string
}

const (
	symbol      = "MUSD"
	decimals    = 18
	circulation = "TokenSupply"

	balancePrefix   = 'b'
	allowancePrefix = 'a'
)

const (
	// ErrInvalidRecipient is thrown by Mint and Transfer methods when
	// the receiving account is not a valid 20-byte script hash.
	ErrInvalidRecipient = "invalid recipient"
	// ErrInvalidSender is thrown by transfer methods when the sending
	// account is not a valid 20-byte script hash.
	ErrInvalidSender = "invalid sender"
	// ErrInvalidSpender is thrown by Approve when the spender account
	// is not a valid 20-byte script hash.
	ErrInvalidSpender = "invalid spender"
	// ErrNegativeAmount is thrown by mutating methods on amount < 0.
	ErrNegativeAmount = "negative amount"
	// ErrInsufficientBalance is thrown by transfer methods when the
	// sender holds less than the requested amount.
	ErrInsufficientBalance = "insufficient balance"
	// ErrInsufficientAllowance is thrown by TransferFrom when the
	// remaining allowance is less than the requested amount.
	ErrInsufficientAllowance = "insufficient allowance"
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	runtime.Log("token contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("token contract updated")
}

// Symbol is a NEP-17 standard method that returns the token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of token
// balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// minted tokens.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the token balance of
// the specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetIntOrZero(ctx, balanceKey(account))
}

// Allowance returns the amount spender is still allowed to withdraw from
// owner via TransferFrom. Zero when nothing was approved.
func Allowance(owner, spender interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetIntOrZero(ctx, allowanceKey(owner, spender))
}

// Mint credits the specified account with the given amount of tokens and
// increases total supply. The token is a settlement rail for demo invoices,
// minting is not restricted.
//
// It produces Transfer notification with empty sender.
func Mint(to interop.Hash160, amount int) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if len(to) != interop.Hash160Len {
		panic(ErrInvalidRecipient)
	}

	ctx := storage.GetContext()
	token.move(ctx, nil, to, amount)

	supply := token.getSupply(ctx)
	storage.Put(ctx, token.CirculationKey, supply+amount)
	runtime.Log("tokens minted")
}

// Transfer is a NEP-17 standard method that transfers tokens from one account
// to another. It can be invoked only by the account owner or by a contract
// with the owner's script hash.
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if len(to) != interop.Hash160Len {
		panic(ErrInvalidRecipient)
	}
	if !isUsableAddress(from) {
		panic(common.ErrOwnerWitnessFailed)
	}

	ctx := storage.GetContext()
	token.move(ctx, from, to, amount)

	return true
}

// Approve sets the allowance of spender over the caller's tokens to exactly
// the given amount, overwriting any previous value. It can be invoked only
// by the account owner.
//
// It produces Approval notification.
func Approve(owner, spender interop.Hash160, amount int) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if len(spender) != interop.Hash160Len {
		panic(ErrInvalidSpender)
	}
	if !isUsableAddress(owner) {
		panic(common.ErrOwnerWitnessFailed)
	}

	ctx := storage.GetContext()
	key := allowanceKey(owner, spender)
	if amount == 0 {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, amount)
	}

	runtime.Notify("Approval", owner, spender, amount)
}

// TransferFrom moves tokens from one account to another using the allowance
// mechanism. The spender must either witness the transaction or be the
// calling contract. The allowance is checked and decremented before balances
// move, so either the whole transfer happens or none of it does.
//
// It produces Transfer notification.
func TransferFrom(spender, from, to interop.Hash160, amount int) bool {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if len(from) != interop.Hash160Len {
		panic(ErrInvalidSender)
	}
	if len(to) != interop.Hash160Len {
		panic(ErrInvalidRecipient)
	}
	if !isUsableAddress(spender) {
		panic(common.ErrOwnerWitnessFailed)
	}

	ctx := storage.GetContext()
	key := allowanceKey(from, spender)
	remaining := common.GetIntOrZero(ctx, key)
	if remaining < amount {
		panic(ErrInsufficientAllowance)
	}

	if remaining == amount {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, remaining-amount)
	}

	token.move(ctx, from, to, amount)

	return true
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	return common.GetIntOrZero(ctx, t.CirculationKey)
}

// move debits from (unless empty, which is the mint path) and credits to.
// It panics if the sender balance is not enough.
func (t Token) move(ctx storage.Context, from, to interop.Hash160, amount int) {
	if len(from) == interop.Hash160Len {
		fromKey := balanceKey(from)
		fromBalance := common.GetIntOrZero(ctx, fromKey)
		if fromBalance < amount {
			panic(ErrInsufficientBalance)
		}

		if fromBalance == amount {
			storage.Delete(ctx, fromKey)
		} else {
			storage.Put(ctx, fromKey, fromBalance-amount)
		}
	}

	toKey := balanceKey(to)
	storage.Put(ctx, toKey, common.GetIntOrZero(ctx, toKey)+amount)

	runtime.Notify("Transfer", from, to, amount)
}

// isUsableAddress checks if the sender is either a correct NEO address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		// Check if a smart contract is calling script hash
		callingScriptHash := runtime.GetCallingScriptHash()
		if callingScriptHash.Equals(addr) {
			return true
		}
	}

	return false
}

func balanceKey(holder interop.Hash160) []byte {
	return append([]byte{balancePrefix}, holder...)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}
