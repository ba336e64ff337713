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

import (
	"fmt"
	"strings"
)

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

const (
	// ErrUnitNotFound is reported when a call targets an address without a
	// deployed unit.
	ErrUnitNotFound = ConstError("no unit deployed at target address")
	// ErrUnknownCode is reported when the code hash of a target is not
	// registered in the unit registry.
	ErrUnknownCode = ConstError("unknown unit code")
	// ErrUnknownOperation is reported when a unit does not implement the
	// selected operation.
	ErrUnknownOperation = ConstError("unknown operation")
	// ErrInvalidInput is reported when the arguments of an operation can not
	// be decoded.
	ErrInvalidInput = ConstError("invalid input")
	// ErrInvalidOutput is reported when the result of an operation does not
	// match the operation's signature.
	ErrInvalidOutput = ConstError("invalid output")
	// ErrOutOfGas is reported when the budget of the call chain is exhausted.
	// It aborts the whole call chain.
	ErrOutOfGas = ConstError("out of gas")
	// ErrMaxCallDepth is reported when a call exceeds the maximum nesting depth.
	ErrMaxCallDepth = ConstError("max call depth exceeded")
	// ErrReentrantCall is reported when a call targets a unit already
	// executing in the current call chain.
	ErrReentrantCall = ConstError("reentrant call")
	// ErrAddressCollision is reported when a construction targets an address
	// which is already in use.
	ErrAddressCollision = ConstError("address collision")
	// ErrNonceMismatch is reported when the nonce of a transaction does not
	// match the sender's nonce.
	ErrNonceMismatch = ConstError("nonce mismatch")
	// ErrIntrinsicGas is reported when the gas limit of a transaction does not
	// cover its intrinsic costs.
	ErrIntrinsicGas = ConstError("intrinsic gas too low")
	// ErrSwallowedFailure is reported when a unit reports success although
	// one of the calls it issued failed.
	ErrSwallowedFailure = ConstError("failure of nested call was not propagated")
)

// DispatchError describes a failed dispatch of a call or construction. The
// wrapped error is the failure of the callee, which may itself be a
// DispatchError of a call issued by the callee.
type DispatchError struct {
	Kind     CallKind
	Caller   Address
	Target   Address
	Selector Selector // zero for constructions or inputs shorter than a selector
	Depth    int
	Err      error
}

func (e *DispatchError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%v to %v", e.Kind, e.Target)
	if e.Kind == Call {
		fmt.Fprintf(&builder, " (selector %v)", e.Selector)
	}
	fmt.Fprintf(&builder, " by %v at depth %d failed: %v", e.Caller, e.Depth, e.Err)
	return builder.String()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// SelectorOf returns the selector encoded in the given input. Inputs shorter
// than a selector produce the zero selector.
func SelectorOf(input Data) (s Selector) {
	if len(input) >= len(s) {
		copy(s[:], input)
	}
	return s
}
