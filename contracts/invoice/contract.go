package invoice

import (
	"github.com/chainvoice/invoice-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Invoice is a billing record registered by a seller against a client.
// All fields except Paid are immutable after creation.
type Invoice struct {
	// Sequential identifier, starts from 1. Zero means "does not exist".
	ID int
	// Account that created the invoice and receives the payment.
	Seller interop.Hash160
	// Account obligated to pay, must differ from Seller.
	Client interop.Hash160
	// Token contract used for settlement.
	Token interop.Hash160
	// Amount to pay in the token's smallest units.
	Amount int
	// Free-form annotation, advisory only.
	Description string
	// Settlement flag, flips to true exactly once.
	Paid bool
}

const (
	counterKey    = 'c'
	invoicePrefix = 'i'

	maxDescriptionLen = 1024
)

const (
	// ErrInvalidAmount is thrown by CreateInvoice on amount <= 0.
	ErrInvalidAmount = "invalid amount"
	// ErrInvalidTokenAddress is thrown by CreateInvoice when the token
	// is not a valid 20-byte script hash.
	ErrInvalidTokenAddress = "invalid token address"
	// ErrInvalidClientAddress is thrown by CreateInvoice when the client
	// is not a valid 20-byte script hash.
	ErrInvalidClientAddress = "invalid client address"
	// ErrClientEqualsSeller is thrown by CreateInvoice when the seller
	// names themselves as the client.
	ErrClientEqualsSeller = "client equals seller"
	// ErrDescriptionTooLong is thrown by CreateInvoice when the
	// description exceeds maxDescriptionLen bytes.
	ErrDescriptionTooLong = "description too long"
	// ErrNotFound is thrown by PayInvoice for id 0 or an id that was
	// never assigned.
	ErrNotFound = "invoice not found"
	// ErrAlreadyPaid is thrown by PayInvoice on a settled invoice.
	ErrAlreadyPaid = "invoice already paid"
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	runtime.Log("invoice contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("invoice contract updated")
}

// CreateInvoice registers a new invoice of the seller against the client and
// returns its identifier. Identifiers are assigned sequentially starting
// from 1, no identifier is ever reused or skipped. No funds move at this
// point. The seller must witness the transaction.
//
// It produces InvoiceCreated notification.
func CreateInvoice(seller, client interop.Hash160, amount int, tokenAddress interop.Hash160, description string) int {
	if amount <= 0 {
		panic(ErrInvalidAmount)
	}
	if len(tokenAddress) != interop.Hash160Len {
		panic(ErrInvalidTokenAddress)
	}
	if len(client) != interop.Hash160Len {
		panic(ErrInvalidClientAddress)
	}
	if client.Equals(seller) {
		panic(ErrClientEqualsSeller)
	}
	if len(description) > maxDescriptionLen {
		panic(ErrDescriptionTooLong)
	}

	common.CheckOwnerWitness(seller)

	ctx := storage.GetContext()
	id := common.GetIntOrZero(ctx, []byte{counterKey}) + 1
	storage.Put(ctx, []byte{counterKey}, id)

	inv := Invoice{
		ID:          id,
		Seller:      seller,
		Client:      client,
		Token:       tokenAddress,
		Amount:      amount,
		Description: description,
		Paid:        false,
	}
	common.SetSerialized(ctx, invoiceKey(id), inv)

	runtime.Notify("InvoiceCreated", id, seller, client, amount, description)

	return id
}

// PayInvoice settles an open invoice. The payer must witness the transaction
// and is expected (but not required) to be the invoice's client: anyone who
// granted this contract a sufficient token allowance may pay on the client's
// behalf. The invoice amount is pulled from the payer through the token's
// transferFrom and lands directly on the seller's account, this contract
// never holds the funds.
//
// The token call happens before the paid flag is written. A token failure
// faults the whole transaction, so the flag and the balances always commit
// or revert together.
//
// It produces InvoicePaid notification.
func PayInvoice(payer interop.Hash160, id int) {
	common.CheckOwnerWitness(payer)

	ctx := storage.GetContext()
	if id == 0 {
		panic(ErrNotFound)
	}

	data := storage.Get(ctx, invoiceKey(id))
	if data == nil {
		panic(ErrNotFound)
	}

	inv := std.Deserialize(data.([]byte)).(Invoice)
	if inv.Paid {
		panic(ErrAlreadyPaid)
	}

	ok := contract.Call(inv.Token, "transferFrom", contract.All,
		runtime.GetExecutingScriptHash(), payer, inv.Seller, inv.Amount).(bool)
	if !ok {
		panic("token transfer failed")
	}

	inv.Paid = true
	common.SetSerialized(ctx, invoiceKey(id), inv)

	runtime.Notify("InvoicePaid", id, payer)
}

// InvoiceId returns the identifier of the most recently created invoice,
// zero if none were created yet.
func InvoiceId() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetIntOrZero(ctx, []byte{counterKey})
}

// Invoices returns the invoice with the given identifier. A zero-value
// Invoice is returned for identifiers that were never assigned.
func Invoices(id int) Invoice {
	ctx := storage.GetReadOnlyContext()
	return getInvoice(ctx, id)
}

// GetAllInvoices returns all invoices ever created, including settled ones,
// in creation order. Cost is linear in the total invoice count, accepted
// for this minimal design.
func GetAllInvoices() []Invoice {
	ctx := storage.GetReadOnlyContext()
	count := common.GetIntOrZero(ctx, []byte{counterKey})

	result := []Invoice{}
	for id := 1; id <= count; id++ {
		result = append(result, getInvoice(ctx, id))
	}

	return result
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getInvoice(ctx storage.Context, id int) Invoice {
	data := storage.Get(ctx, invoiceKey(id))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Invoice)
	}

	return Invoice{}
}

func invoiceKey(id int) []byte {
	var buf any = id

	return append([]byte{invoicePrefix}, buf.([]byte)...)
}
