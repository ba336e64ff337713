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

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:generate mockgen -source unit.go -destination unit_mock.go -package courier

// Interface is implemented by unit types to describe the set of operations
// they offer. Remote references are typed by an Interface, which is used to
// encode the operations issued through the reference.
type Interface interface {
	// ABI returns the signatures of the operations of the unit type. The
	// result must not be modified by the caller.
	ABI() *abi.ABI
}

// Unit is the code of a unit type. A deployed unit instance is an address
// with persistent storage bound to the code of a Unit registered in the
// unit registry of this package. Implementations are stateless; all state
// is accessed through the RunContext provided in the Parameters.
type Unit interface {
	Interface

	// Construct initializes the storage of a freshly deployed instance using
	// the ABI-encoded constructor arguments provided as input.
	Construct(Parameters) (Result, error)

	// Run dispatches the operation selected by the input of the parameters.
	// A non-nil error signals a failure of the operation. The host rolls
	// back all effects of a failed invocation and reports the failure to the
	// caller.
	Run(Parameters) (Result, error)
}

// CallContext summarizes the host-supplied metadata of a single dispatched
// invocation. It is recomputed by the host on every dispatch and never
// persisted.
type CallContext struct {
	Caller         Address // the immediate invoker, a unit or an external account
	CallerIsOrigin bool    // true iff Caller is the external account that started the transaction
	Self           Address // the address of the invoked unit instance
}

func (c CallContext) String() string {
	return fmt.Sprintf("caller=%v, callerIsOrigin=%t, self=%v", c.Caller, c.CallerIsOrigin, c.Self)
}

// Parameters summarizes the list of input parameters of a unit invocation.
type Parameters struct {
	CallContext
	Context  RunContext
	Kind     CallKind
	Depth    int
	Gas      Gas // the budget available when entering the invocation
	Input    Data
	CodeHash Hash
}

// Result summarizes the result of a successful unit invocation.
type Result struct {
	Output Data
}

// RunContext is the interface of the host as seen by a running unit. Every
// invocation is provided with its own RunContext bound to the invoked
// instance. Storage operations only address the storage of that instance;
// other units can only be affected through calls of their operations.
type RunContext interface {
	// GetStorage reads a slot of the storage of the running instance.
	GetStorage(Key) (Word, error)
	// SetStorage updates a slot of the storage of the running instance.
	SetStorage(Key, Word) error

	// Call synchronously dispatches input to the unit at the given address.
	// The call provides at most the given amount of gas to the callee; a
	// zero gas value or a value exceeding the available budget forwards the
	// full remaining budget. The call only returns once the callee has
	// completed. A failure of the callee is reported as an error, which is
	// a *DispatchError describing the failed call.
	Call(target Address, input Data, gas Gas) (CallResult, error)

	// GasLeft returns the budget remaining for the running invocation.
	GasLeft() Gas

	// EmitDiagnostic forwards a message to the host's diagnostic sink. The
	// message has no effect on state or results and may be dropped.
	EmitDiagnostic(message string, keysAndValues ...any)
}

// CallResult summarizes the result of a successful nested call.
type CallResult struct {
	Output  Data
	GasUsed Gas
}

// Diagnostic is a message emitted by a unit for observability purposes.
type Diagnostic struct {
	Unit    Address
	Depth   int
	Message string
	Fields  []any
}

// DiagnosticSink receives diagnostics emitted by running units. Sinks must
// not fail; diagnostics are best effort.
type DiagnosticSink interface {
	Emit(Diagnostic)
}
