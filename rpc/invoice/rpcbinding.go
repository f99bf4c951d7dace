// Package invoice contains RPC wrappers for Chainvoice Invoice contract.
package invoice

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// InvoiceInvoice is a contract-specific invoice.Invoice type used by its methods.
type InvoiceInvoice struct {
	ID          *big.Int
	Seller      util.Uint160
	Client      util.Uint160
	Token       util.Uint160
	Amount      *big.Int
	Description string
	Paid        bool
}

// InvoiceCreatedEvent represents "InvoiceCreated" event emitted by the contract.
type InvoiceCreatedEvent struct {
	ID          *big.Int
	Seller      util.Uint160
	Client      util.Uint160
	Amount      *big.Int
	Description string
}

// InvoicePaidEvent represents "InvoicePaid" event emitted by the contract.
type InvoicePaidEvent struct {
	ID    *big.Int
	Payer util.Uint160
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// GetAllInvoices invokes `getAllInvoices` method of contract.
func (c *ContractReader) GetAllInvoices() ([]*InvoiceInvoice, error) {
	return func(item stackitem.Item, err error) ([]*InvoiceInvoice, error) {
		if err != nil {
			return nil, err
		}
		arr, ok := item.Value().([]stackitem.Item)
		if !ok {
			return nil, errors.New("not an array")
		}
		res := make([]*InvoiceInvoice, len(arr))
		for i := range res {
			res[i], err = itemToInvoiceInvoice(arr[i], nil)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
		}
		return res, nil
	}(unwrap.Item(c.invoker.Call(c.hash, "getAllInvoices")))
}

// InvoiceId invokes `invoiceId` method of contract.
func (c *ContractReader) InvoiceId() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "invoiceId"))
}

// Invoices invokes `invoices` method of contract.
func (c *ContractReader) Invoices(id *big.Int) (*InvoiceInvoice, error) {
	return itemToInvoiceInvoice(unwrap.Item(c.invoker.Call(c.hash, "invoices", id)))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// CreateInvoice creates a transaction invoking `createInvoice` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) CreateInvoice(seller util.Uint160, client util.Uint160, amount *big.Int, tokenAddress util.Uint160, description string) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "createInvoice", seller, client, amount, tokenAddress, description)
}

// CreateInvoiceTransaction creates a transaction invoking `createInvoice` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) CreateInvoiceTransaction(seller util.Uint160, client util.Uint160, amount *big.Int, tokenAddress util.Uint160, description string) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "createInvoice", seller, client, amount, tokenAddress, description)
}

// CreateInvoiceUnsigned creates a transaction invoking `createInvoice` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) CreateInvoiceUnsigned(seller util.Uint160, client util.Uint160, amount *big.Int, tokenAddress util.Uint160, description string) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "createInvoice", nil, seller, client, amount, tokenAddress, description)
}

// PayInvoice creates a transaction invoking `payInvoice` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) PayInvoice(payer util.Uint160, id *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "payInvoice", payer, id)
}

// PayInvoiceTransaction creates a transaction invoking `payInvoice` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) PayInvoiceTransaction(payer util.Uint160, id *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "payInvoice", payer, id)
}

// PayInvoiceUnsigned creates a transaction invoking `payInvoice` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) PayInvoiceUnsigned(payer util.Uint160, id *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "payInvoice", nil, payer, id)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// itemToInvoiceInvoice converts stack item into *InvoiceInvoice.
func itemToInvoiceInvoice(item stackitem.Item, err error) (*InvoiceInvoice, error) {
	if err != nil {
		return nil, err
	}
	var res = new(InvoiceInvoice)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of InvoiceInvoice from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *InvoiceInvoice) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 7 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	res.Seller, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Seller: %w", err)
	}

	index++
	res.Client, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Client: %w", err)
	}

	index++
	res.Token, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Token: %w", err)
	}

	index++
	res.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	res.Description, err = func(item stackitem.Item) (string, error) {
		b, err := item.TryBytes()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", errors.New("not a UTF-8 string")
		}
		return string(b), nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Description: %w", err)
	}

	index++
	res.Paid, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field Paid: %w", err)
	}

	return nil
}

// InvoiceCreatedEventsFromApplicationLog retrieves a set of all emitted events
// with "InvoiceCreated" name from the provided [result.ApplicationLog].
func InvoiceCreatedEventsFromApplicationLog(log *result.ApplicationLog) ([]*InvoiceCreatedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*InvoiceCreatedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "InvoiceCreated" {
				continue
			}
			event := new(InvoiceCreatedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize InvoiceCreatedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to InvoiceCreatedEvent or
// returns an error if it's not possible to do to so.
func (e *InvoiceCreatedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 5 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	e.Seller, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Seller: %w", err)
	}

	index++
	e.Client, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Client: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.Description, err = func(item stackitem.Item) (string, error) {
		b, err := item.TryBytes()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", errors.New("not a UTF-8 string")
		}
		return string(b), nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Description: %w", err)
	}

	return nil
}

// InvoicePaidEventsFromApplicationLog retrieves a set of all emitted events
// with "InvoicePaid" name from the provided [result.ApplicationLog].
func InvoicePaidEventsFromApplicationLog(log *result.ApplicationLog) ([]*InvoicePaidEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*InvoicePaidEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "InvoicePaid" {
				continue
			}
			event := new(InvoicePaidEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize InvoicePaidEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to InvoicePaidEvent or
// returns an error if it's not possible to do to so.
func (e *InvoicePaidEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	e.ID, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	e.Payer, err = func(item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	}(arr[index])
	if err != nil {
		return fmt.Errorf("field Payer: %w", err)
	}

	return nil
}
