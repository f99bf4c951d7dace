package tests

import (
	"strings"
	"testing"

	"github.com/chainvoice/invoice-contract/common"
	"github.com/chainvoice/invoice-contract/contracts/invoice"
	"github.com/chainvoice/invoice-contract/contracts/token"
	rpcinvoice "github.com/chainvoice/invoice-contract/rpc/invoice"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func newInvoiceExecutor(t *testing.T) (*neotest.Executor, util.Uint160, util.Uint160) {
	e := newExecutor(t)
	tokenHash := deployTokenContract(t, e)
	invoiceHash := deployInvoiceContract(t, e)
	return e, invoiceHash, tokenHash
}

func getInvoiceRecord(t *testing.T, c *neotest.ContractInvoker, id int64) *rpcinvoice.InvoiceInvoice {
	res, err := c.TestInvoke(t, "invoices", id)
	require.NoError(t, err)

	rec := new(rpcinvoice.InvoiceInvoice)
	require.NoError(t, rec.FromStackItem(res.Pop().Item()))
	return rec
}

func getAllInvoiceRecords(t *testing.T, c *neotest.ContractInvoker) []*rpcinvoice.InvoiceInvoice {
	res, err := c.TestInvoke(t, "getAllInvoices")
	require.NoError(t, err)

	arr, ok := res.Pop().Item().Value().([]stackitem.Item)
	require.True(t, ok)

	records := make([]*rpcinvoice.InvoiceInvoice, len(arr))
	for i := range arr {
		records[i] = new(rpcinvoice.InvoiceInvoice)
		require.NoError(t, records[i].FromStackItem(arr[i]))
	}
	return records
}

func TestInvoiceDeploy(t *testing.T) {
	e, invoiceHash, _ := newInvoiceExecutor(t)
	c := e.CommitteeInvoker(invoiceHash)

	c.Invoke(t, 0, "invoiceId")
	c.Invoke(t, stackitem.NewArray([]stackitem.Item{}), "getAllInvoices")
	c.Invoke(t, common.Version, "version")
}

func TestInvoiceCreate(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)

	desc := "web design " + uuid.NewString()
	txH := cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, desc)
	cSeller.Invoke(t, 1, "invoiceId")

	aer := e.GetTxExecResult(t, txH)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "InvoiceCreated", aer.Events[0].Name)

	ev := new(rpcinvoice.InvoiceCreatedEvent)
	require.NoError(t, ev.FromStackItem(aer.Events[0].Item))
	require.EqualValues(t, 1, ev.ID.Int64())
	require.Equal(t, seller.ScriptHash(), ev.Seller)
	require.Equal(t, client.ScriptHash(), ev.Client)
	require.EqualValues(t, 100, ev.Amount.Int64())
	require.Equal(t, desc, ev.Description)

	rec := getInvoiceRecord(t, cSeller, 1)
	require.EqualValues(t, 1, rec.ID.Int64())
	require.Equal(t, seller.ScriptHash(), rec.Seller)
	require.Equal(t, client.ScriptHash(), rec.Client)
	require.Equal(t, tokenHash, rec.Token)
	require.EqualValues(t, 100, rec.Amount.Int64())
	require.Equal(t, desc, rec.Description)
	require.False(t, rec.Paid)

	// Identifiers are assigned sequentially, nothing is reused or skipped.
	cSeller.Invoke(t, 2, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(200), tokenHash, "second")
	cSeller.Invoke(t, 3, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(300), tokenHash, "third")
	cSeller.Invoke(t, 3, "invoiceId")
}

func TestInvoiceCreateValidation(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)

	cSeller.InvokeFail(t, invoice.ErrInvalidAmount, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(0), tokenHash, "free")
	cSeller.InvokeFail(t, invoice.ErrInvalidAmount, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(-5), tokenHash, "negative")
	cSeller.InvokeFail(t, invoice.ErrInvalidTokenAddress, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), []byte{1, 2, 3}, "bad token")
	cSeller.InvokeFail(t, invoice.ErrInvalidClientAddress, "createInvoice",
		seller.ScriptHash(), []byte{}, int64(100), tokenHash, "bad client")
	cSeller.InvokeFail(t, invoice.ErrClientEqualsSeller, "createInvoice",
		seller.ScriptHash(), seller.ScriptHash(), int64(100), tokenHash, "self billing")
	cSeller.InvokeFail(t, invoice.ErrDescriptionTooLong, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, strings.Repeat("x", 1025))

	// Amount is checked first, a call broken in several ways reports the
	// amount problem.
	cSeller.InvokeFail(t, invoice.ErrInvalidAmount, "createInvoice",
		seller.ScriptHash(), []byte{1}, int64(0), []byte{1}, "broken")

	// Creating an invoice on someone else's behalf is not possible.
	cSeller.InvokeFail(t, common.ErrOwnerWitnessFailed, "createInvoice",
		client.ScriptHash(), seller.ScriptHash(), int64(100), tokenHash, "forged")

	cSeller.Invoke(t, 0, "invoiceId")
}

func TestInvoicePay(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cClient := e.NewInvoker(invoiceHash, client)
	cToken := e.NewInvoker(tokenHash, client)

	cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, "design")

	cToken.Invoke(t, stackitem.Null{}, "mint", client.ScriptHash(), int64(1000))
	cToken.Invoke(t, stackitem.Null{}, "approve",
		client.ScriptHash(), invoiceHash, int64(100))

	txH := cClient.Invoke(t, stackitem.Null{}, "payInvoice", client.ScriptHash(), int64(1))

	aer := e.GetTxExecResult(t, txH)
	var paid []*rpcinvoice.InvoicePaidEvent
	for _, n := range aer.Events {
		if n.Name != "InvoicePaid" {
			continue
		}
		ev := new(rpcinvoice.InvoicePaidEvent)
		require.NoError(t, ev.FromStackItem(n.Item))
		paid = append(paid, ev)
	}
	require.Equal(t, 1, len(paid))
	require.EqualValues(t, 1, paid[0].ID.Int64())
	require.Equal(t, client.ScriptHash(), paid[0].Payer)

	rec := getInvoiceRecord(t, cClient, 1)
	require.True(t, rec.Paid)

	cToken.Invoke(t, 100, "balanceOf", seller.ScriptHash())
	cToken.Invoke(t, 900, "balanceOf", client.ScriptHash())
	cToken.Invoke(t, 0, "allowance", client.ScriptHash(), invoiceHash)
}

func TestInvoicePayByThirdParty(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	payer := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cPayer := e.NewInvoker(invoiceHash, payer)
	cToken := e.NewInvoker(tokenHash, payer)

	cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(50), tokenHash, "hosting")

	// Anyone with enough funds and allowance may settle on the client's
	// behalf, the ledger records who actually paid.
	cToken.Invoke(t, stackitem.Null{}, "mint", payer.ScriptHash(), int64(50))
	cToken.Invoke(t, stackitem.Null{}, "approve",
		payer.ScriptHash(), invoiceHash, int64(50))

	txH := cPayer.Invoke(t, stackitem.Null{}, "payInvoice", payer.ScriptHash(), int64(1))

	aer := e.GetTxExecResult(t, txH)
	require.Equal(t, "InvoicePaid", aer.Events[len(aer.Events)-1].Name)

	ev := new(rpcinvoice.InvoicePaidEvent)
	require.NoError(t, ev.FromStackItem(aer.Events[len(aer.Events)-1].Item))
	require.Equal(t, payer.ScriptHash(), ev.Payer)

	cToken.Invoke(t, 50, "balanceOf", seller.ScriptHash())
	cToken.Invoke(t, 0, "balanceOf", payer.ScriptHash())
	require.True(t, getInvoiceRecord(t, cPayer, 1).Paid)
}

func TestInvoicePayNotFound(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cClient := e.NewInvoker(invoiceHash, client)

	cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, "design")

	cClient.InvokeFail(t, invoice.ErrNotFound, "payInvoice", client.ScriptHash(), int64(0))
	cClient.InvokeFail(t, invoice.ErrNotFound, "payInvoice", client.ScriptHash(), int64(99))

	// The keyed lookup answers with a zero-value record for unknown ids.
	res, err := cClient.TestInvoke(t, "invoices", int64(99))
	require.NoError(t, err)
	arr, ok := res.Pop().Item().Value().([]stackitem.Item)
	require.True(t, ok)
	id, err := arr[0].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, 0, id.Int64())
}

func TestInvoicePayTwice(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cClient := e.NewInvoker(invoiceHash, client)
	cToken := e.NewInvoker(tokenHash, client)

	cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, "design")

	cToken.Invoke(t, stackitem.Null{}, "mint", client.ScriptHash(), int64(1000))
	cToken.Invoke(t, stackitem.Null{}, "approve",
		client.ScriptHash(), invoiceHash, int64(200))

	cClient.Invoke(t, stackitem.Null{}, "payInvoice", client.ScriptHash(), int64(1))
	cClient.InvokeFail(t, invoice.ErrAlreadyPaid, "payInvoice", client.ScriptHash(), int64(1))

	// Only the first settlement moved funds.
	cToken.Invoke(t, 100, "balanceOf", seller.ScriptHash())
	cToken.Invoke(t, 900, "balanceOf", client.ScriptHash())
}

func TestInvoicePayAtomicity(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	sink := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cClient := e.NewInvoker(invoiceHash, client)
	cToken := e.NewInvoker(tokenHash, client)

	cSeller.Invoke(t, 1, "createInvoice",
		seller.ScriptHash(), client.ScriptHash(), int64(100), tokenHash, "design")

	t.Run("no allowance", func(t *testing.T) {
		cToken.Invoke(t, stackitem.Null{}, "mint", client.ScriptHash(), int64(1000))

		cClient.InvokeFail(t, token.ErrInsufficientAllowance,
			"payInvoice", client.ScriptHash(), int64(1))

		require.False(t, getInvoiceRecord(t, cClient, 1).Paid)
		cToken.Invoke(t, 1000, "balanceOf", client.ScriptHash())
		cToken.Invoke(t, 0, "balanceOf", seller.ScriptHash())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		cToken.Invoke(t, stackitem.Null{}, "approve",
			client.ScriptHash(), invoiceHash, int64(100))
		cToken.Invoke(t, true, "transfer",
			client.ScriptHash(), sink.ScriptHash(), int64(1000), nil)
		cToken.Invoke(t, 0, "balanceOf", client.ScriptHash())

		cClient.InvokeFail(t, token.ErrInsufficientBalance,
			"payInvoice", client.ScriptHash(), int64(1))

		require.False(t, getInvoiceRecord(t, cClient, 1).Paid)
		cToken.Invoke(t, 100, "allowance", client.ScriptHash(), invoiceHash)
		cToken.Invoke(t, 0, "balanceOf", seller.ScriptHash())
	})

	t.Run("missing payer witness", func(t *testing.T) {
		cSeller.InvokeFail(t, common.ErrOwnerWitnessFailed,
			"payInvoice", client.ScriptHash(), int64(1))
	})
}

func TestInvoiceGetAll(t *testing.T) {
	e, invoiceHash, tokenHash := newInvoiceExecutor(t)

	seller := e.NewAccount(t)
	client := e.NewAccount(t)
	cSeller := e.NewInvoker(invoiceHash, seller)
	cClient := e.NewInvoker(invoiceHash, client)
	cToken := e.NewInvoker(tokenHash, client)

	descs := []string{
		"first " + uuid.NewString(),
		"second " + uuid.NewString(),
		"third " + uuid.NewString(),
	}
	for i, d := range descs {
		cSeller.Invoke(t, i+1, "createInvoice",
			seller.ScriptHash(), client.ScriptHash(), int64(100*(i+1)), tokenHash, d)
	}

	cToken.Invoke(t, stackitem.Null{}, "mint", client.ScriptHash(), int64(1000))
	cToken.Invoke(t, stackitem.Null{}, "approve",
		client.ScriptHash(), invoiceHash, int64(200))
	cClient.Invoke(t, stackitem.Null{}, "payInvoice", client.ScriptHash(), int64(2))

	records := getAllInvoiceRecords(t, cClient)
	require.Equal(t, 3, len(records))
	for i, rec := range records {
		require.EqualValues(t, i+1, rec.ID.Int64())
		require.Equal(t, descs[i], rec.Description)
		require.Equal(t, seller.ScriptHash(), rec.Seller)
		require.Equal(t, client.ScriptHash(), rec.Client)
		require.EqualValues(t, 100*(i+1), rec.Amount.Int64())
		require.Equal(t, i == 1, rec.Paid)
	}

	// Repeated enumeration with no mutations in between is identical.
	require.Equal(t, records, getAllInvoiceRecords(t, cClient))
}
