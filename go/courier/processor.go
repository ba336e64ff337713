// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package courier

//go:generate mockgen -source processor.go -destination processor_mock.go -package courier

// Processor is an interface for a component capable of executing transactions.
// Implementations handle the checking of nonces, the charging of intrinsic
// gas, the construction of new unit instances, and the execution of unit
// operations using (potentially) nested synchronous calls. A transaction is
// executed as a single unit of work: either all of its effects are applied,
// or none of them.
type Processor interface {
	// Run executes the given transaction on the given context. The resulting
	// error is only non-nil if the processor itself failed to process the
	// transaction. Failures of the executed units are reported through the
	// receipt.
	Run(Transaction, TransactionContext) (Receipt, error)
}

// Transaction summarizes the parameters of a transaction to be executed.
type Transaction struct {
	Sender    Address  // the external account issuing the transaction
	Recipient *Address // the invoked unit, nil if a new unit is to be constructed
	CodeHash  Hash     // the code of the unit to be constructed, ignored for calls
	Nonce     uint64   // the nonce of the sender account, used to prevent replay attacks
	Input     Data     // the operation input or the encoded constructor arguments
	GasLimit  Gas      // the budget of the whole call chain
}

// Receipt summarizes the result of the execution of a transaction.
type Receipt struct {
	Success         bool     // false if any part of the call chain failed, true otherwise
	Output          Data     // the output produced by the invoked operation
	ContractAddress *Address // filled if a unit was constructed by this transaction
	GasUsed         Gas      // gas consumed by the transaction
	Err             error    // the failure of the call chain, nil on success
}
