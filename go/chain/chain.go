// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package chain provides an execution host running transactions of external
// accounts against an in-memory world state, one transaction at a time.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/Courier/go/courier"
	"github.com/Fantom-foundation/Courier/go/logger"
	"github.com/Fantom-foundation/Courier/go/processor/host"
	"github.com/Fantom-foundation/Courier/go/state"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// DefaultGasLimit is the gas limit of transactions not specifying one.
const DefaultGasLimit courier.Gas = 10_000_000

// Chain serializes transactions on a shared world state. Every successful
// or failed transaction is final once it returns.
type Chain struct {
	mutex     sync.Mutex
	context   *state.Context
	processor courier.Processor
	gasLimit  courier.Gas
}

// New creates a chain starting from the given world state. The state is
// copied and not modified by the chain.
func New(processor courier.Processor, initial state.WorldState) *Chain {
	return &Chain{
		context:   state.NewContext(initial),
		processor: processor,
		gasLimit:  DefaultGasLimit,
	}
}

// SetGasLimit sets the gas limit used for transactions not specifying one.
func (c *Chain) SetGasLimit(gas courier.Gas) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.gasLimit = gas
}

// Execute runs the given transaction. The nonce of the transaction is set to
// the current nonce of the sender. The context is only checked before the
// transaction is started; once started, a transaction runs to completion.
func (c *Chain) Execute(ctx context.Context, transaction courier.Transaction) (courier.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return courier.Receipt{}, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.execute(ctx, transaction, false)
}

func (c *Chain) execute(ctx context.Context, transaction courier.Transaction, readOnly bool) (courier.Receipt, error) {
	transaction.Nonce = c.context.GetNonce(transaction.Sender)
	if transaction.GasLimit == 0 {
		transaction.GasLimit = c.gasLimit
	}

	snapshot := c.context.CreateSnapshot()
	receipt, err := c.processor.Run(transaction, c.context)
	if err != nil || readOnly {
		c.context.RestoreSnapshot(snapshot)
	}
	if err != nil {
		return receipt, fmt.Errorf("failed to process transaction: %w", err)
	}
	if !readOnly {
		c.context.Commit()
	}

	logger.DebugKV(ctx, "transaction executed",
		"sender", transaction.Sender,
		"nonce", transaction.Nonce,
		"success", receipt.Success,
		"readOnly", readOnly,
		"gasUsed", receipt.GasUsed,
	)
	return receipt, nil
}

// Deploy constructs a new instance of the registered unit with the given
// name. The arguments are encoded using the constructor of the unit's ABI.
// A failed construction is reported as an error and through the receipt.
func (c *Chain) Deploy(ctx context.Context, sender courier.Address, unitName string, args ...any) (courier.Address, courier.Receipt, error) {
	unit := courier.GetUnitByName(unitName)
	if unit == nil {
		return courier.Address{}, courier.Receipt{}, fmt.Errorf("%w: %s", courier.ErrUnknownCode, unitName)
	}
	input, err := unit.ABI().Pack("", args...)
	if err != nil {
		return courier.Address{}, courier.Receipt{}, fmt.Errorf("%w: constructor arguments of %s: %v", courier.ErrInvalidInput, unitName, err)
	}
	receipt, err := c.Execute(ctx, courier.Transaction{
		Sender:   sender,
		CodeHash: courier.CodeHash(unitName),
		Input:    input,
	})
	if err != nil {
		return courier.Address{}, receipt, err
	}
	if !receipt.Success {
		return courier.Address{}, receipt, receipt.Err
	}
	return *receipt.ContractAddress, receipt, nil
}

// Invoke calls the given operation of the unit deployed at the target
// address. Arguments and results are encoded using the ABI of the unit code
// deployed at the target.
func (c *Chain) Invoke(ctx context.Context, sender, target courier.Address, method string, args ...any) ([]any, courier.Receipt, error) {
	return c.invoke(ctx, sender, target, nil, method, false, args...)
}

// InvokeAs calls the given operation of the target using the given
// interface instead of the ABI of the deployed unit code.
func (c *Chain) InvokeAs(ctx context.Context, sender, target courier.Address, iface courier.Interface, method string, args ...any) ([]any, courier.Receipt, error) {
	return c.invoke(ctx, sender, target, iface.ABI(), method, false, args...)
}

// Query runs the given operation like Invoke but discards all of its
// effects, including the nonce update of the sender.
func (c *Chain) Query(ctx context.Context, sender, target courier.Address, method string, args ...any) ([]any, courier.Receipt, error) {
	return c.invoke(ctx, sender, target, nil, method, true, args...)
}

func (c *Chain) invoke(
	ctx context.Context,
	sender, target courier.Address,
	contract *abi.ABI,
	method string,
	readOnly bool,
	args ...any,
) ([]any, courier.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, courier.Receipt{}, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if contract == nil {
		unit, err := c.unitAt(target)
		if err != nil {
			return nil, courier.Receipt{}, err
		}
		contract = unit.ABI()
	}
	input, err := contract.Pack(method, args...)
	if err != nil {
		return nil, courier.Receipt{}, fmt.Errorf("%w: call of %s: %v", courier.ErrInvalidInput, method, err)
	}
	transaction := courier.Transaction{
		Sender:    sender,
		Recipient: &target,
		Input:     input,
	}

	receipt, err := c.execute(ctx, transaction, readOnly)
	if err != nil {
		return nil, receipt, err
	}
	if !receipt.Success {
		return nil, receipt, receipt.Err
	}

	results, err := contract.Unpack(method, receipt.Output)
	if err != nil {
		return nil, receipt, fmt.Errorf("%w: result of %s: %v", courier.ErrInvalidOutput, method, err)
	}
	return results, receipt, nil
}

func (c *Chain) unitAt(address courier.Address) (courier.Unit, error) {
	codeHash := c.context.GetCodeHash(address)
	if codeHash == (courier.Hash{}) {
		return nil, fmt.Errorf("%w: %v", courier.ErrUnitNotFound, address)
	}
	unit := courier.GetUnit(codeHash)
	if unit == nil {
		return nil, fmt.Errorf("%w: %v at %v", courier.ErrUnknownCode, codeHash, address)
	}
	return unit, nil
}

// UnitName returns the registry name of the code deployed at the given
// address.
func (c *Chain) UnitName(address courier.Address) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return courier.GetUnitName(c.context.GetCodeHash(address))
}

// ReserveAddress returns the address a unit constructed by the next
// transaction of the given sender will be deployed at. Unit addresses are
// derived from the sender's nonce, so the reservation only holds if the
// sender executes no other transaction before the deployment. Queries and
// requests rejected before execution do not count as transactions.
func (c *Chain) ReserveAddress(sender courier.Address) courier.Address {
	return c.ReserveAddresses(sender, 1)[0]
}

// ReserveAddresses returns the addresses of units constructed by the next n
// transactions of the given sender. The i-th address is the one of a unit
// deployed by the sender's i-th transaction from now, whatever the
// transactions before it do.
func (c *Chain) ReserveAddresses(sender courier.Address, n int) []courier.Address {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	nonce := c.context.GetNonce(sender)
	res := make([]courier.Address, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, host.UnitAddress(sender, nonce+uint64(i)))
	}
	return res
}

// Nonce returns the current nonce of the given account.
func (c *Chain) Nonce(address courier.Address) uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.context.GetNonce(address)
}

// Storage returns a storage slot of the given account.
func (c *Chain) Storage(address courier.Address, key courier.Key) courier.Word {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.context.GetStorage(address, key)
}

// State returns a copy of the current world state.
func (c *Chain) State() state.WorldState {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.context.State()
}
