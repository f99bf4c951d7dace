/*
Package token implements the settlement token used by the Invoice contract.

It is a NEP-17 compatible mintable token extended with an ERC-20 style
allowance mechanism: an account owner can grant another account (or a
contract) the right to withdraw up to a fixed amount of its tokens via
TransferFrom. The Invoice contract uses exactly this path to pull funds
from a payer and forward them to an invoice's seller within a single
transaction.

Minting is open, the token is a demo settlement rail, not a currency with
an issuance policy.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification. The sender
is empty for minting operations.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Approval notification. Produced when an account sets an allowance.

	Approval:
	  - name: owner
	    type: Hash160
	  - name: spender
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package token

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'TokenSupply' -> int
   total amount of minted tokens in Fixed18
 - b<owner interop.Hash160> -> int
   token balance of the owner, key is removed when the balance drops to zero
 - a<owner interop.Hash160><spender interop.Hash160> -> int
   remaining allowance of spender over owner's tokens, key is removed when
   the allowance is exhausted or reset to zero

# Accounting
Contract stores balances and allowances of all token holders.
*/
