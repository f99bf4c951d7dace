/*
Package invoice implements the Invoice contract, an append-only on-chain
invoice ledger with token settlement.

A seller registers a billing obligation against a client with
createInvoice, no funds move at that point. The client (or anyone acting
on the client's behalf) later approves the Invoice contract as a spender
on the settlement token and calls payInvoice. The contract pulls the
invoice amount from the payer through the token's transferFrom, forwards
it directly to the seller and flips the invoice's paid flag, all within
one transaction. A settled invoice can never be paid again and no invoice
record is ever deleted.

The contract keeps no custody: tokens flow from payer to seller in the
same transaction, the ledger itself never carries a third party balance.

Off-chain observers (wallets, the billing UI) follow state changes via
the notifications below and the safe read methods invoiceId, invoices and
getAllInvoices.

# Contract notifications

InvoiceCreated notification. Produced on every successful invoice
registration.

	InvoiceCreated:
	  - name: id
	    type: Integer
	  - name: seller
	    type: Hash160
	  - name: client
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: description
	    type: String

InvoicePaid notification. Produced on every successful settlement.

	InvoicePaid:
	  - name: id
	    type: Integer
	  - name: payer
	    type: Hash160
*/
package invoice

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'c' -> int
   identifier of the most recently created invoice, incremented before
   every registration so the first invoice gets id 1
 - i<id int> -> std.Serialize(Invoice)
   invoice records keyed by identifier (here Invoice is a structure
   defined in current package)

# Ledger
Contract stores all invoices ever created. Records are append-only, the
only mutation after creation is the one-way flip of the Paid flag.
*/
