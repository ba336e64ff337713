// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package host

import (
	"fmt"

	"github.com/Fantom-foundation/Courier/go/courier"
)

// transactionState is shared by all frames of a single call chain.
type transactionState struct {
	processor *Processor
	context   courier.TransactionContext
	active    map[courier.Address]bool // units with a running invocation
	aborted   error                    // non-nil once the chain must not do any further work
}

// frame is the courier.RunContext handed to a single invocation of a unit.
// The origin frame represents the external account issuing the transaction.
type frame struct {
	tx      *transactionState
	self    courier.Address
	depth   int
	gasLeft courier.Gas
	failure error // the first failed dispatch issued by this frame
}

func newOriginFrame(
	processor *Processor,
	context courier.TransactionContext,
	sender courier.Address,
	gas courier.Gas,
) *frame {
	return &frame{
		tx: &transactionState{
			processor: processor,
			context:   context,
			active:    map[courier.Address]bool{},
		},
		self:    sender,
		depth:   -1,
		gasLeft: gas,
	}
}

func (f *frame) GetStorage(key courier.Key) (courier.Word, error) {
	if err := f.charge(f.tx.processor.config.StorageReadGas); err != nil {
		return courier.Word{}, err
	}
	return f.tx.context.GetStorage(f.self, key), nil
}

func (f *frame) SetStorage(key courier.Key, value courier.Word) error {
	if err := f.charge(f.tx.processor.config.StorageWriteGas); err != nil {
		return err
	}
	f.tx.context.SetStorage(f.self, key, value)
	return nil
}

func (f *frame) Call(target courier.Address, input courier.Data, gas courier.Gas) (courier.CallResult, error) {
	output, gasUsed, err := f.dispatch(courier.Call, target, input, gas, nil)
	return courier.CallResult{Output: output, GasUsed: gasUsed}, err
}

func (f *frame) GasLeft() courier.Gas {
	return f.gasLeft
}

func (f *frame) EmitDiagnostic(message string, keysAndValues ...any) {
	sink := f.tx.processor.config.Diagnostics
	if sink == nil {
		return
	}
	sink.Emit(courier.Diagnostic{
		Unit:    f.self,
		Depth:   f.depth,
		Message: message,
		Fields:  keysAndValues,
	})
}

// charge consumes the given amount of gas. Running out of gas aborts the
// whole call chain.
func (f *frame) charge(gas courier.Gas) error {
	if f.tx.aborted != nil {
		return f.tx.aborted
	}
	if f.gasLeft < gas {
		f.gasLeft = 0
		f.tx.aborted = courier.ErrOutOfGas
		return courier.ErrOutOfGas
	}
	f.gasLeft -= gas
	return nil
}

// dispatch runs the given input on the target unit in a new child frame. For
// calls, the code is taken from the target account; constructions provide
// the code hash of the unit to be deployed. The gas consumed by the child is
// returned, any unused gas is given back to the calling frame.
func (f *frame) dispatch(
	kind courier.CallKind,
	target courier.Address,
	input courier.Data,
	gas courier.Gas,
	codeHash *courier.Hash,
) (courier.Data, courier.Gas, error) {
	depth := f.depth + 1
	fail := func(err error, gasUsed courier.Gas) (courier.Data, courier.Gas, error) {
		dispatchErr := &courier.DispatchError{
			Kind:   kind,
			Caller: f.self,
			Target: target,
			Depth:  depth,
			Err:    err,
		}
		if kind == courier.Call {
			dispatchErr.Selector = courier.SelectorOf(input)
		}
		if f.failure == nil {
			f.failure = dispatchErr
		}
		return nil, gasUsed, dispatchErr
	}

	config := &f.tx.processor.config
	dispatchGas := config.CallGas
	if kind == courier.Create {
		dispatchGas = config.CreateGas
	}
	if err := f.charge(dispatchGas); err != nil {
		return fail(err, 0)
	}
	if depth > config.MaxCallDepth {
		return fail(courier.ErrMaxCallDepth, 0)
	}
	if f.tx.active[target] {
		return fail(courier.ErrReentrantCall, 0)
	}

	context := f.tx.context
	if kind == courier.Create {
		if context.AccountExists(target) {
			return fail(courier.ErrAddressCollision, 0)
		}
	} else {
		if !context.AccountExists(target) || context.GetCodeHash(target) == (courier.Hash{}) {
			return fail(courier.ErrUnitNotFound, 0)
		}
		hash := context.GetCodeHash(target)
		codeHash = &hash
	}
	unit := f.tx.processor.resolve(*codeHash)
	if unit == nil {
		return fail(fmt.Errorf("%w: %v", courier.ErrUnknownCode, *codeHash), 0)
	}

	snapshot := context.CreateSnapshot()
	if kind == courier.Create {
		context.SetNonce(target, 1)
		context.SetCodeHash(target, *codeHash)
	}

	childGas := gas
	if childGas <= 0 || childGas > f.gasLeft {
		childGas = f.gasLeft
	}
	f.gasLeft -= childGas
	child := &frame{
		tx:      f.tx,
		self:    target,
		depth:   depth,
		gasLeft: childGas,
	}

	params := courier.Parameters{
		CallContext: courier.CallContext{
			Caller:         f.self,
			CallerIsOrigin: depth == 0,
			Self:           target,
		},
		Context:  child,
		Kind:     kind,
		Depth:    depth,
		Gas:      childGas,
		Input:    input,
		CodeHash: *codeHash,
	}

	f.tx.active[target] = true
	var result courier.Result
	var err error
	if kind == courier.Create {
		result, err = unit.Construct(params)
	} else {
		result, err = unit.Run(params)
	}
	delete(f.tx.active, target)
	err = child.checkOutcome(err)

	gasUsed := childGas - child.gasLeft
	f.gasLeft += child.gasLeft
	if err != nil {
		context.RestoreSnapshot(snapshot)
		return fail(err, gasUsed)
	}
	return result.Output, gasUsed, nil
}

// checkOutcome determines the final result of the invocation running in the
// frame. A unit reporting success is still failed if the chain was aborted
// or if one of its own dispatches failed.
func (f *frame) checkOutcome(err error) error {
	if err != nil {
		return err
	}
	if f.tx.aborted != nil {
		return f.tx.aborted
	}
	if f.failure != nil {
		return fmt.Errorf("%w: %w", courier.ErrSwallowedFailure, f.failure)
	}
	return nil
}
